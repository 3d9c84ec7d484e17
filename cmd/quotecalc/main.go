package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/export"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("quotecalc: %v", err)
	}
}

func newApp(out io.Writer) *cli.App {
	catalogFlag := &cli.StringFlag{
		Name:    "catalog",
		Usage:   "preset catalog YAML (defaults to the built-in catalog)",
		EnvVars: []string{"CATALOG_PATH"},
	}

	return &cli.App{
		Name:      "quotecalc",
		Usage:     "price wrap jobs from the command line",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:      "eval",
				Usage:     "price the job described in a YAML or JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "job inputs file", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "print the financials as JSON"},
					catalogFlag,
				},
				Action: func(c *cli.Context) error {
					cat, err := loadCatalog(c.String("catalog"))
					if err != nil {
						return err
					}
					in, err := readJobInputs(c.String("file"), cat)
					if err != nil {
						return err
					}
					return printEval(c.App.Writer, in, pricing.Calculate(in, cat), c.Bool("json"))
				},
			},
			{
				Name:  "presets",
				Usage: "list vehicle presets and PPF packages",
				Flags: []cli.Flag{catalogFlag},
				Action: func(c *cli.Context) error {
					cat, err := loadCatalog(c.String("catalog"))
					if err != nil {
						return err
					}
					return printPresets(c.App.Writer, cat)
				},
			},
		},
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// readJobInputs reads a job file over the shop fallback defaults, so a file
// only needs the fields that differ. A .json file uses the API's camelCase
// keys; anything else is YAML with snake_case keys. Unknown keys are errors.
func readJobInputs(path string, cat *catalog.Catalog) (pricing.JobInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.JobInputs{}, fmt.Errorf("read job file: %w", err)
	}

	in := store.FallbackDefaults.NewInputs()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&in)
	} else {
		err = yaml.UnmarshalStrict(data, &in)
	}
	if err != nil {
		return pricing.JobInputs{}, fmt.Errorf("parse job file %s: %w", path, err)
	}

	if in.VehiclePreset != "" {
		in = pricing.ApplyVehiclePreset(in, cat, in.VehiclePreset)
	}
	in.MarginTarget = pricing.ClampMarginTarget(in.MarginTarget)
	return in, nil
}

func printEval(out io.Writer, in pricing.JobInputs, f pricing.ComputedFinancials, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode financials: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value string
	}{
		{"Material", export.FormatUSD(f.Material)},
		{"Labor", export.FormatUSD(f.Labor)},
		{"Hours", export.FormatHours(f.Hours)},
		{"Design fee", export.FormatUSD(f.DesignFee)},
		{"Misc", export.FormatUSD(f.Misc)},
		{"COGS", export.FormatUSD(f.Cogs)},
		{"Sale", export.FormatUSD(f.Sale)},
		{"Profit", export.FormatUSD(f.Profit)},
		{"GPM", export.FormatPercent(f.GPMPercent)},
		{"Commission", export.FormatUSD(f.CommissionTotal)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", r.label, r.value)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write financials: %w", err)
	}

	hours := in.EstHours.Sync(f.Hours)
	_, err := fmt.Fprintf(out, "%s | est. hours %s (%s)\n", f.CommissionLabel, export.FormatHours(hours.Value), hours.Source)
	return err
}

func printPresets(out io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "VEHICLE\tNAME\tPAY\tHOURS\tSQFT")
	for _, v := range cat.Vehicles() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Key, v.Name, export.FormatUSD(v.PayAmount), export.FormatHours(v.Hours), export.FormatHours(v.Sqft))
	}

	fmt.Fprintln(tw, "\nPPF\tNAME\tSALE\tPAY\tHOURS")
	for _, p := range cat.PPFPackages() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Key, p.Name, export.FormatUSD(p.SaleAmount), export.FormatUSD(p.PayAmount), export.FormatHours(p.Hours))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}
