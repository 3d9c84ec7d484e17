package pricing

import "math"

// SolveSale returns the sale price at which (sale-cogs)/sale equals
// marginTarget percent. A target of 0 or exactly 100 prices at cost.
func SolveSale(cogs, marginTarget float64) float64 {
	if marginTarget <= 0 || marginTarget == 100 {
		return cogs
	}
	return cogs / (1 - marginTarget/100)
}

func salePrice(in JobInputs, res resolution, cogs float64) float64 {
	if res.CatalogPriced {
		return res.CatalogSale
	}
	return SolveSale(cogs, in.MarginTarget)
}

// basePrice is the first pricing step: catalog price or margin-solved price.
func basePrice(in JobInputs, res resolution, s stage) stage {
	s.Sale = salePrice(in, res, s.Cogs)
	return s
}

// applyPayOverride replaces labor with the manual pay figure on non-PPF jobs
// and reprices from the new cost.
func applyPayOverride(in JobInputs, res resolution, s stage) stage {
	if in.ManualPayOverride == nil || in.JobType == JobPPF {
		return s
	}
	s.Labor = *in.ManualPayOverride
	s.Hours = 0
	if in.RatePerHour > 0 {
		s.Hours = roundTenth(s.Labor / in.RatePerHour)
	}
	s.Cogs = s.cogs()
	s.Sale = salePrice(in, res, s.Cogs)
	return s
}

// applySalePriceOverride is the last word on the sale price for every job type.
func applySalePriceOverride(in JobInputs, s stage) stage {
	if in.SalesPriceOverride == nil || *in.SalesPriceOverride <= 0 {
		return s
	}
	s.Sale = *in.SalesPriceOverride
	return s
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
