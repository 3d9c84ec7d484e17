package pricing

import (
	"math"
	"strconv"
	"strings"
)

// JobType is the top-level kind of wrap job.
type JobType string

const (
	JobCommercial JobType = "commercial"
	JobMarine     JobType = "marine"
	JobPPF        JobType = "ppf"
)

// CommercialSubtype picks the sizing rule of a commercial job.
type CommercialSubtype string

const (
	SubtypeVehicle  CommercialSubtype = "vehicle"
	SubtypeTrailer  CommercialSubtype = "trailer"
	SubtypeBoxTruck CommercialSubtype = "box_truck"
)

// LeadType is where the sale came from. It selects the commission rule.
type LeadType string

const (
	LeadInbound  LeadType = "inbound"
	LeadOutbound LeadType = "outbound"
	LeadPreSold  LeadType = "presold"
)

// Margin target range offered by the quote form.
const (
	MinMarginTarget = 40.0
	MaxMarginTarget = 90.0
)

// HoursSource records who last wrote an estimated-hours value.
type HoursSource string

const (
	HoursAuto   HoursSource = "auto"
	HoursManual HoursSource = "manual"
)

// EstHours is the editable estimated-hours field. Computed hours only replace
// it while it is still tracking the computation; a value typed by the user
// sticks until it is reset to auto.
type EstHours struct {
	Value  float64     `json:"value" yaml:"value"`
	Source HoursSource `json:"source" yaml:"source"`
}

// AutoHours is an estimate that follows the computed hours.
func AutoHours(v float64) EstHours { return EstHours{Value: v, Source: HoursAuto} }

// ManualHours is an estimate typed by the user.
func ManualHours(v float64) EstHours { return EstHours{Value: v, Source: HoursManual} }

// Sync returns the field value after a computation produced computed hours.
func (h EstHours) Sync(computed float64) EstHours {
	if h.Source == HoursManual {
		return h
	}
	return AutoHours(computed)
}

// JobInputs is the full quote form snapshot fed to Calculate.
type JobInputs struct {
	JobType           JobType           `json:"jobType" yaml:"job_type"`
	CommercialSubtype CommercialSubtype `json:"commercialSubtype" yaml:"commercial_subtype"`
	VehiclePreset     string            `json:"vehiclePreset,omitempty" yaml:"vehicle_preset"`
	PPFPreset         string            `json:"ppfPreset,omitempty" yaml:"ppf_preset"`

	TrailerWidth         float64 `json:"trailerWidth" yaml:"trailer_width"`
	TrailerHeight        float64 `json:"trailerHeight" yaml:"trailer_height"`
	BoxTruckWidth        float64 `json:"boxTruckWidth" yaml:"box_truck_width"`
	BoxTruckHeightInches float64 `json:"boxTruckHeightInches" yaml:"box_truck_height_inches"`
	HullLength           float64 `json:"hullLength" yaml:"hull_length"`
	HullHeight           float64 `json:"hullHeight" yaml:"hull_height"`
	Passes               float64 `json:"passes" yaml:"passes"`
	TotalSqft            float64 `json:"totalSqft" yaml:"total_sqft"`

	LaborPctTrailer  float64 `json:"laborPctTrailer" yaml:"labor_pct_trailer"`
	LaborPctBoxTruck float64 `json:"laborPctBoxTruck" yaml:"labor_pct_box_truck"`
	LaborPctMarine   float64 `json:"laborPctMarine" yaml:"labor_pct_marine"`
	MarginTarget     float64 `json:"marginTarget" yaml:"margin_target"`

	DesignFee   float64 `json:"designFee" yaml:"design_fee"`
	MiscCosts   float64 `json:"miscCosts" yaml:"misc_costs"`
	RatePerHour float64 `json:"ratePerHour" yaml:"rate_per_hour"`

	RoofAddon       float64 `json:"roofAddon" yaml:"roof_addon"`
	PrepWorkEnabled bool    `json:"prepWorkEnabled" yaml:"prep_work_enabled"`
	Rivets          bool    `json:"rivets" yaml:"rivets"`
	Screws          bool    `json:"screws" yaml:"screws"`
	// PerfWindowFilm is recorded on the job but carries no cost.
	PerfWindowFilm bool `json:"perfWindowFilm" yaml:"perf_window_film"`

	ManualPayOverride  *float64 `json:"manualPayOverride,omitempty" yaml:"manual_pay_override"`
	SalesPriceOverride *float64 `json:"salesPriceOverride,omitempty" yaml:"sales_price_override"`

	LeadType      LeadType `json:"leadType" yaml:"lead_type"`
	TorqCompleted bool     `json:"torqCompleted" yaml:"torq_completed"`

	EstHours EstHours `json:"estHours" yaml:"est_hours"`
}

// ParseAmount reads a form number. Blank or malformed input reads as 0.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseOptionalAmount reads an override field. Blank or malformed input means
// the override is absent.
func ParseOptionalAmount(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	clean := strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseJobType reads a job type, falling back to commercial.
func ParseJobType(raw string) JobType {
	switch JobType(strings.ToLower(strings.TrimSpace(raw))) {
	case JobMarine:
		return JobMarine
	case JobPPF:
		return JobPPF
	default:
		return JobCommercial
	}
}

// ParseCommercialSubtype reads a subtype, falling back to vehicle.
func ParseCommercialSubtype(raw string) CommercialSubtype {
	switch CommercialSubtype(strings.ToLower(strings.TrimSpace(raw))) {
	case SubtypeTrailer:
		return SubtypeTrailer
	case SubtypeBoxTruck:
		return SubtypeBoxTruck
	default:
		return SubtypeVehicle
	}
}

// ParseLeadType reads a lead type. Unknown values are paid as inbound.
func ParseLeadType(raw string) LeadType {
	switch LeadType(strings.ToLower(strings.TrimSpace(raw))) {
	case LeadOutbound:
		return LeadOutbound
	case LeadPreSold:
		return LeadPreSold
	default:
		return LeadInbound
	}
}

// ClampMarginTarget pins a margin target to the range the quote form offers.
// Calculate itself never clamps.
func ClampMarginTarget(v float64) float64 {
	if v < MinMarginTarget {
		return MinMarginTarget
	}
	if v > MaxMarginTarget {
		return MaxMarginTarget
	}
	return v
}

// ApplyVehiclePreset selects a vehicle preset. The preset's square footage is
// copied into TotalSqft only when the field is still empty, so a hand-entered
// value is never replaced.
func ApplyVehiclePreset(in JobInputs, presets Presets, key string) JobInputs {
	in.VehiclePreset = key
	preset, ok := presets.VehiclePreset(key)
	if !ok {
		return in
	}
	if in.TotalSqft <= 0 {
		in.TotalSqft = preset.Sqft
	}
	return in
}
