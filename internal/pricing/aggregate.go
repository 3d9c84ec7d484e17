package pricing

import "math"

const prepFastenerSurcharge = 70.0

// stage is a complete intermediate cost/price record. Each step of the
// override pipeline takes one and returns a new one.
type stage struct {
	Material  float64
	Labor     float64
	Hours     float64
	DesignFee float64
	Misc      float64 // misc costs + roof add-on + prep surcharge
	Cogs      float64
	Sale      float64
}

func (s stage) cogs() float64 {
	return s.Material + s.Labor + s.DesignFee + s.Misc
}

func prepSurcharge(in JobInputs) float64 {
	if !in.PrepWorkEnabled {
		return 0
	}
	total := 0.0
	if in.Rivets {
		total += prepFastenerSurcharge
	}
	if in.Screws {
		total += prepFastenerSurcharge
	}
	return total
}

// aggregate folds fees and add-ons into the resolved costs and fills in
// percentage-based labor.
func aggregate(in JobInputs, res resolution) stage {
	s := stage{
		Material:  res.Material,
		Labor:     res.Labor,
		Hours:     res.Hours,
		DesignFee: in.DesignFee,
		Misc:      in.MiscCosts + in.RoofAddon + prepSurcharge(in),
	}

	if res.LaborDeferred {
		preLabor := s.Material + s.DesignFee + s.Misc
		s.Labor = preLabor * res.LaborPct / 100
		s.Hours = 0
		if s.Labor > 0 && in.RatePerHour > 0 {
			s.Hours = math.Ceil(s.Labor / in.RatePerHour)
		}
	}

	s.Cogs = s.cogs()
	return s
}
