package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// VehiclePreset is a flat-pay commercial vehicle wrap.
type VehiclePreset struct {
	Key       string  `yaml:"key" json:"key"`
	Name      string  `yaml:"name" json:"name"`
	PayAmount float64 `yaml:"pay_amount" json:"payAmount"`
	Hours     float64 `yaml:"hours" json:"hours"`
	Category  string  `yaml:"category" json:"category"`
	Sqft      float64 `yaml:"sqft" json:"sqft"`
}

// PPFPackage is a list-priced paint protection film package.
type PPFPackage struct {
	Key            string  `yaml:"key" json:"key"`
	Name           string  `yaml:"name" json:"name"`
	SaleAmount     float64 `yaml:"sale_amount" json:"saleAmount"`
	PayAmount      float64 `yaml:"pay_amount" json:"payAmount"`
	Hours          float64 `yaml:"hours" json:"hours"`
	MaterialAmount float64 `yaml:"material_amount" json:"materialAmount"`
	Description    string  `yaml:"description" json:"description"`
}

// GPTier is one row of the monthly gross-profit commission table. It is
// reference data for display and is never used by the commission math.
type GPTier struct {
	Label       string  `yaml:"label" json:"label"`
	MinGP       float64 `yaml:"min_gp" json:"minGp"`
	MaxGP       float64 `yaml:"max_gp" json:"maxGp,omitempty"`
	InboundPct  float64 `yaml:"inbound_pct" json:"inboundPct"`
	OutboundPct float64 `yaml:"outbound_pct" json:"outboundPct"`
}

type catalogFile struct {
	Vehicles    []VehiclePreset `yaml:"vehicles"`
	PPFPackages []PPFPackage    `yaml:"ppf_packages"`
	RoofAddons  []float64       `yaml:"roof_addons"`
	GPTiers     []GPTier        `yaml:"gp_tiers"`
}

// Catalog holds the static preset tables. It is built once and only read
// afterwards; accessors hand out copies.
type Catalog struct {
	vehicles     []VehiclePreset
	vehicleByKey map[string]int
	ppf          []PPFPackage
	ppfByKey     map[string]int
	roofAddons   []float64
	gpTiers      []GPTier
}

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// LoadFile parses a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from YAML and validates keys and amounts.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	c := &Catalog{
		vehicleByKey: make(map[string]int, len(file.Vehicles)),
		ppfByKey:     make(map[string]int, len(file.PPFPackages)),
		roofAddons:   file.RoofAddons,
		gpTiers:      file.GPTiers,
	}

	for _, v := range file.Vehicles {
		if v.Key == "" {
			return nil, fmt.Errorf("vehicle preset %q has no key", v.Name)
		}
		if _, dup := c.vehicleByKey[v.Key]; dup {
			return nil, fmt.Errorf("duplicate vehicle preset key %q", v.Key)
		}
		if v.PayAmount < 0 || v.Hours < 0 || v.Sqft < 0 {
			return nil, fmt.Errorf("vehicle preset %q has negative amounts", v.Key)
		}
		c.vehicleByKey[v.Key] = len(c.vehicles)
		c.vehicles = append(c.vehicles, v)
	}

	for _, p := range file.PPFPackages {
		if p.Key == "" {
			return nil, fmt.Errorf("ppf package %q has no key", p.Name)
		}
		if _, dup := c.ppfByKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate ppf package key %q", p.Key)
		}
		if p.SaleAmount < 0 || p.PayAmount < 0 || p.Hours < 0 || p.MaterialAmount < 0 {
			return nil, fmt.Errorf("ppf package %q has negative amounts", p.Key)
		}
		c.ppfByKey[p.Key] = len(c.ppf)
		c.ppf = append(c.ppf, p)
	}

	if len(c.roofAddons) == 0 {
		c.roofAddons = []float64{0}
	}

	return c, nil
}

// VehiclePreset looks up a vehicle preset by key.
func (c *Catalog) VehiclePreset(key string) (VehiclePreset, bool) {
	i, ok := c.vehicleByKey[key]
	if !ok {
		return VehiclePreset{}, false
	}
	return c.vehicles[i], true
}

// PPFPackage looks up a PPF package by key.
func (c *Catalog) PPFPackage(key string) (PPFPackage, bool) {
	i, ok := c.ppfByKey[key]
	if !ok {
		return PPFPackage{}, false
	}
	return c.ppf[i], true
}

// Vehicles returns a copy of the vehicle presets in catalog order.
func (c *Catalog) Vehicles() []VehiclePreset {
	return append([]VehiclePreset(nil), c.vehicles...)
}

// PPFPackages returns a copy of the PPF packages in catalog order.
func (c *Catalog) PPFPackages() []PPFPackage {
	return append([]PPFPackage(nil), c.ppf...)
}

// RoofAddons returns the offered roof add-on prices, 0 included.
func (c *Catalog) RoofAddons() []float64 {
	return append([]float64(nil), c.roofAddons...)
}

// GPTiers returns the reference GP tier table.
func (c *Catalog) GPTiers() []GPTier {
	return append([]GPTier(nil), c.gpTiers...)
}

// IsRoofAddon reports whether amount is one of the offered roof add-on prices.
func (c *Catalog) IsRoofAddon(amount float64) bool {
	for _, a := range c.roofAddons {
		if a == amount {
			return true
		}
	}
	return false
}
