package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

// QuoteSheet is the printable summary of one priced job, shared by the
// Excel and PDF renderers.
type QuoteSheet struct {
	Title       string
	JobID       string
	CreatedDate string
	JobLabel    string
	LeadType    string

	// Lines are the cost build-up, in display order.
	Lines []CostLine

	Cogs            float64
	Sale            float64
	Profit          float64
	GPMPercent      float64
	CommissionRate  float64
	CommissionTotal float64
	CommissionLabel string
}

// CostLine is one row of the cost build-up.
type CostLine struct {
	Label  string
	Detail string
	Amount float64
}

// NewQuoteSheet builds the sheet for job from freshly computed financials.
func NewQuoteSheet(job store.Job, f pricing.ComputedFinancials) QuoteSheet {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = "Untitled quote"
	}

	created := ""
	if !job.CreatedAt.IsZero() {
		created = job.CreatedAt.Format("2006-01-02")
	}

	return QuoteSheet{
		Title:       title,
		JobID:       job.ID,
		CreatedDate: created,
		JobLabel:    jobLabel(job.Inputs),
		LeadType:    string(job.Inputs.LeadType),
		Lines: []CostLine{
			{Label: "Material", Amount: f.Material},
			{Label: "Installer labor", Detail: fmt.Sprintf("%s h", FormatHours(f.Hours)), Amount: f.Labor},
			{Label: "Design fee", Amount: f.DesignFee},
			{Label: "Misc", Amount: f.Misc},
		},
		Cogs:            f.Cogs,
		Sale:            f.Sale,
		Profit:          f.Profit,
		GPMPercent:      f.GPMPercent,
		CommissionRate:  f.CommissionRate,
		CommissionTotal: f.CommissionTotal,
		CommissionLabel: f.CommissionLabel,
	}
}

func jobLabel(in pricing.JobInputs) string {
	switch in.JobType {
	case pricing.JobPPF:
		return "PPF " + in.PPFPreset
	case pricing.JobMarine:
		return "Marine"
	}
	switch in.CommercialSubtype {
	case pricing.SubtypeTrailer:
		return "Commercial trailer"
	case pricing.SubtypeBoxTruck:
		return "Commercial box truck"
	}
	if in.VehiclePreset == "" {
		return "Commercial vehicle"
	}
	return "Commercial vehicle " + in.VehiclePreset
}

// FormatUSD renders amount as dollars with thousands separators, e.g. $4,564.00.
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	return sign + "$" + groupThousands(parts[0]) + "." + parts[1]
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatHours drops the decimals of whole hours.
func FormatHours(h float64) string {
	return decimal.NewFromFloat(h).Round(1).String()
}

// FormatPercent renders a percent value with one decimal, e.g. 75.0%.
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}
