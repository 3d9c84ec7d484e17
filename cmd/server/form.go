package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
)

// parseJobInputsForm overlays the submitted quote form on base. Fields left
// out of the form keep their base value; malformed numbers read as zero.
func parseJobInputsForm(r *http.Request, base pricing.JobInputs, cat *catalog.Catalog) (pricing.JobInputs, error) {
	if err := r.ParseForm(); err != nil {
		return base, fmt.Errorf("parse form: %w", err)
	}
	form := r.Form
	in := base

	if form.Has("job_type") {
		in.JobType = pricing.ParseJobType(form.Get("job_type"))
	}
	if form.Has("commercial_subtype") {
		in.CommercialSubtype = pricing.ParseCommercialSubtype(form.Get("commercial_subtype"))
	}
	if form.Has("lead_type") {
		in.LeadType = pricing.ParseLeadType(form.Get("lead_type"))
	}
	if form.Has("ppf_preset") {
		in.PPFPreset = strings.TrimSpace(form.Get("ppf_preset"))
	}

	amounts := []struct {
		field string
		dst   *float64
	}{
		{"trailer_width", &in.TrailerWidth},
		{"trailer_height", &in.TrailerHeight},
		{"box_truck_width", &in.BoxTruckWidth},
		{"box_truck_height_inches", &in.BoxTruckHeightInches},
		{"hull_length", &in.HullLength},
		{"hull_height", &in.HullHeight},
		{"passes", &in.Passes},
		{"total_sqft", &in.TotalSqft},
		{"labor_pct_trailer", &in.LaborPctTrailer},
		{"labor_pct_box_truck", &in.LaborPctBoxTruck},
		{"labor_pct_marine", &in.LaborPctMarine},
		{"margin_target", &in.MarginTarget},
		{"design_fee", &in.DesignFee},
		{"misc_costs", &in.MiscCosts},
		{"rate_per_hour", &in.RatePerHour},
		{"roof_addon", &in.RoofAddon},
	}
	for _, a := range amounts {
		if form.Has(a.field) {
			*a.dst = pricing.ParseAmount(form.Get(a.field))
		}
	}
	in.MarginTarget = pricing.ClampMarginTarget(in.MarginTarget)

	if cat != nil && !cat.IsRoofAddon(in.RoofAddon) {
		return in, fmt.Errorf("roof_addon must be one of %v", cat.RoofAddons())
	}

	flags := []struct {
		field string
		dst   *bool
	}{
		{"prep_work_enabled", &in.PrepWorkEnabled},
		{"rivets", &in.Rivets},
		{"screws", &in.Screws},
		{"perf_window_film", &in.PerfWindowFilm},
		{"torq_completed", &in.TorqCompleted},
	}
	for _, f := range flags {
		if form.Has(f.field) {
			*f.dst = parseCheckbox(form.Get(f.field))
		}
	}

	if form.Has("manual_pay_override") {
		in.ManualPayOverride = pricing.ParseOptionalAmount(form.Get("manual_pay_override"))
	}
	if form.Has("sales_price_override") {
		in.SalesPriceOverride = pricing.ParseOptionalAmount(form.Get("sales_price_override"))
	}

	in.EstHours = parseEstHours(form, in.EstHours)

	// Selecting a preset fills sqft only when none was entered.
	if form.Has("vehicle_preset") && cat != nil {
		in = pricing.ApplyVehiclePreset(in, cat, strings.TrimSpace(form.Get("vehicle_preset")))
	}

	return in, nil
}

func parseEstHours(form url.Values, current pricing.EstHours) pricing.EstHours {
	switch pricing.HoursSource(strings.TrimSpace(form.Get("est_hours_source"))) {
	case pricing.HoursManual:
		return pricing.ManualHours(pricing.ParseAmount(form.Get("est_hours")))
	case pricing.HoursAuto:
		return pricing.AutoHours(pricing.ParseAmount(form.Get("est_hours")))
	}
	return current
}

func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
