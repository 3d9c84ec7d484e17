package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

func sampleSheet(t *testing.T, title string) QuoteSheet {
	t.Helper()

	presets, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	in := pricing.ApplyVehiclePreset(store.FallbackDefaults.NewInputs(), presets, "med_car")
	job := store.Job{
		ID:        "job-1",
		Title:     title,
		Inputs:    in,
		CreatedAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	return NewQuoteSheet(job, pricing.Calculate(in, presets))
}

func TestNewQuoteSheet(t *testing.T) {
	q := sampleSheet(t, "  Delivery van  ")

	if q.Title != "Delivery van" || q.CreatedDate != "2025-03-14" {
		t.Fatalf("unexpected header: %+v", q)
	}
	if q.JobLabel != "Commercial vehicle med_car" || q.LeadType != "inbound" {
		t.Fatalf("unexpected labels: %q %q", q.JobLabel, q.LeadType)
	}
	if len(q.Lines) != 4 || q.Lines[0].Amount != 441 || q.Lines[1].Detail != "16 h" {
		t.Fatalf("unexpected lines: %+v", q.Lines)
	}
	if q.Sale != 4564 || q.Cogs != 1141 {
		t.Fatalf("unexpected totals: sale=%v cogs=%v", q.Sale, q.Cogs)
	}

	if untitled := NewQuoteSheet(store.Job{}, pricing.ComputedFinancials{}); untitled.Title != "Untitled quote" {
		t.Fatalf("expected placeholder title, got %q", untitled.Title)
	}
}

func TestGenerateExcel(t *testing.T) {
	result, err := GenerateExcel(sampleSheet(t, "Sample: van/wrap"))
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Quote" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	title, _ := f.GetCellValue("Quote", "A1")
	if title != "Sample: van/wrap" {
		t.Errorf("expected title cell, got %q", title)
	}
	material, _ := f.GetCellValue("Quote", "C6")
	if material != "$441.00" {
		t.Errorf("expected material amount in C6, got %q", material)
	}
	sale, _ := f.GetCellValue("Quote", "C11")
	if sale != "$4,564.00" {
		t.Errorf("expected sale amount in C11, got %q", sale)
	}
}

func TestGenerateExcel_SanitizesFormulaTitles(t *testing.T) {
	result, err := GenerateExcel(sampleSheet(t, "=HYPERLINK(\"x\")"))
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue("Quote", "A1")
	if !strings.HasPrefix(title, "'") {
		t.Errorf("expected quoted title, got %q", title)
	}
}

func TestGeneratePDF(t *testing.T) {
	result, err := GeneratePDF(sampleSheet(t, "Delivery van"))
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) < 5 || string(result[:5]) != "%PDF-" {
		t.Fatalf("result does not start with PDF header")
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{441, "$441.00"},
		{4564, "$4,564.00"},
		{1234567.891, "$1,234,567.89"},
		{-82.5, "-$82.50"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHoursAndPercent(t *testing.T) {
	if got := FormatHours(16); got != "16" {
		t.Errorf("FormatHours(16) = %q", got)
	}
	if got := FormatHours(3.33); got != "3.3" {
		t.Errorf("FormatHours(3.33) = %q", got)
	}
	if got := FormatPercent(75); got != "75.0%" {
		t.Errorf("FormatPercent(75) = %q", got)
	}
}
