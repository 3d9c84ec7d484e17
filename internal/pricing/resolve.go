package pricing

const (
	wrapMaterialPerSqft   = 2.10
	marineMaterialPerUnit = 2.50
)

// resolution is the raw cost picture of a job before fees and add-ons.
type resolution struct {
	Material float64
	Labor    float64
	Hours    float64

	// LaborPct is set when labor is a share of the pre-labor cost base and
	// has to be filled in by aggregate.
	LaborPct      float64
	LaborDeferred bool

	// CatalogPriced jobs take CatalogSale instead of a margin-solved price.
	CatalogPriced bool
	CatalogSale   float64
}

func resolve(in JobInputs, presets Presets) resolution {
	switch in.JobType {
	case JobPPF:
		res := resolution{CatalogPriced: true}
		pkg, ok := presets.PPFPackage(in.PPFPreset)
		if !ok {
			return res
		}
		res.Material = pkg.MaterialAmount
		res.Labor = pkg.PayAmount
		res.Hours = pkg.Hours
		res.CatalogSale = pkg.SaleAmount
		return res

	case JobMarine:
		return resolution{
			Material:      in.HullLength * in.Passes * marineMaterialPerUnit,
			LaborPct:      in.LaborPctMarine,
			LaborDeferred: true,
		}
	}

	switch in.CommercialSubtype {
	case SubtypeTrailer:
		sqft := in.TotalSqft
		if in.TrailerWidth > 0 && in.TrailerHeight > 0 {
			sqft = in.TrailerWidth * in.TrailerHeight * 2
		}
		return resolution{
			Material:      sqft * wrapMaterialPerSqft,
			LaborPct:      in.LaborPctTrailer,
			LaborDeferred: true,
		}

	case SubtypeBoxTruck:
		sqft := in.TotalSqft
		if in.BoxTruckWidth > 0 && in.BoxTruckHeightInches > 0 {
			sqft = in.BoxTruckWidth * (in.BoxTruckHeightInches / 12) * 2
		}
		return resolution{
			Material:      sqft * wrapMaterialPerSqft,
			LaborPct:      in.LaborPctBoxTruck,
			LaborDeferred: true,
		}
	}

	preset, ok := presets.VehiclePreset(in.VehiclePreset)
	if !ok {
		return resolution{}
	}
	res := resolution{Labor: preset.PayAmount, Hours: preset.Hours}
	if in.TotalSqft > 0 {
		res.Material = in.TotalSqft * wrapMaterialPerSqft
	}
	return res
}
