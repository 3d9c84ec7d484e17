package pricing

import "github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"

// Presets resolves catalog keys to preset rows.
type Presets interface {
	VehiclePreset(key string) (catalog.VehiclePreset, bool)
	PPFPackage(key string) (catalog.PPFPackage, bool)
}

// ComputedFinancials is the full output of one quote evaluation.
// Commission percentages are in percent points.
type ComputedFinancials struct {
	Material   float64 `json:"material"`
	Labor      float64 `json:"labor"`
	Hours      float64 `json:"hours"`
	DesignFee  float64 `json:"designFee"`
	Misc       float64 `json:"misc"`
	Cogs       float64 `json:"cogs"`
	Sale       float64 `json:"sale"`
	Profit     float64 `json:"profit"`
	GPMPercent float64 `json:"gpmPercent"`

	CommissionBase      float64 `json:"commissionBase"`
	CommissionTorqBonus float64 `json:"commissionTorqBonus"`
	CommissionGPMBonus  float64 `json:"commissionGpmBonus"`
	CommissionRate      float64 `json:"commissionRate"`
	CommissionTotal     float64 `json:"commissionTotal"`
	CommissionLabel     string  `json:"commissionLabel"`
}

// Calculate prices a job from a complete inputs snapshot. It has no side
// effects and returns identical output for identical input.
func Calculate(in JobInputs, presets Presets) ComputedFinancials {
	res := resolve(in, presets)

	s := aggregate(in, res)
	s = basePrice(in, res, s)
	s = applyPayOverride(in, res, s)
	s = applySalePriceOverride(in, s)

	cogs := s.cogs()
	profit := s.Sale - cogs
	gpm := 0.0
	if s.Sale > 0 {
		gpm = profit / s.Sale * 100
	}

	c := Commission(profit, gpm, in.LeadType, in.TorqCompleted, in.JobType)

	return ComputedFinancials{
		Material:   s.Material,
		Labor:      s.Labor,
		Hours:      s.Hours,
		DesignFee:  s.DesignFee,
		Misc:       s.Misc,
		Cogs:       cogs,
		Sale:       s.Sale,
		Profit:     profit,
		GPMPercent: gpm,

		CommissionBase:      c.BasePct,
		CommissionTorqBonus: c.TorqBonusPct,
		CommissionGPMBonus:  c.GPMBonusPct,
		CommissionRate:      c.RatePct,
		CommissionTotal:     c.Total,
		CommissionLabel:     c.Label,
	}
}
