package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// TimeLayout is the format of stored timestamps. It is fixed width so they
// sort as text.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Snapshot is the financial summary persisted on a job record.
type Snapshot struct {
	Sale       float64 `json:"sale"`
	Cogs       float64 `json:"cogs"`
	Profit     float64 `json:"profit"`
	GPM        float64 `json:"gpm"`
	Commission float64 `json:"commission"`
	Labor      float64 `json:"labor"`
	LaborHours float64 `json:"laborHours"`
	Material   float64 `json:"material"`
	DesignFee  float64 `json:"designFee"`
	Misc       float64 `json:"misc"`
}

// SnapshotOf rounds computed financials to cents for storage.
func SnapshotOf(f pricing.ComputedFinancials) Snapshot {
	return Snapshot{
		Sale:       round2(f.Sale),
		Cogs:       round2(f.Cogs),
		Profit:     round2(f.Profit),
		GPM:        round2(f.GPMPercent),
		Commission: round2(f.CommissionTotal),
		Labor:      round2(f.Labor),
		LaborHours: round2(f.Hours),
		Material:   round2(f.Material),
		DesignFee:  round2(f.DesignFee),
		Misc:       round2(f.Misc),
	}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Defaults are the shop-wide values a new quote starts from.
type Defaults struct {
	DesignFee        float64 `json:"designFee"`
	MiscCosts        float64 `json:"miscCosts"`
	RatePerHour      float64 `json:"ratePerHour"`
	MarginTarget     float64 `json:"marginTarget"`
	LaborPctTrailer  float64 `json:"laborPctTrailer"`
	LaborPctBoxTruck float64 `json:"laborPctBoxTruck"`
	LaborPctMarine   float64 `json:"laborPctMarine"`
	Passes           float64 `json:"passes"`
}

// FallbackDefaults is used when the defaults row has never been saved.
var FallbackDefaults = Defaults{
	DesignFee:        150,
	RatePerHour:      35,
	MarginTarget:     75,
	LaborPctTrailer:  10,
	LaborPctBoxTruck: 10,
	LaborPctMarine:   15,
	Passes:           1,
}

// NewInputs returns the inputs of a freshly opened quote.
func (d Defaults) NewInputs() pricing.JobInputs {
	return pricing.JobInputs{
		JobType:           pricing.JobCommercial,
		CommercialSubtype: pricing.SubtypeVehicle,
		LeadType:          pricing.LeadInbound,
		DesignFee:         d.DesignFee,
		MiscCosts:         d.MiscCosts,
		RatePerHour:       d.RatePerHour,
		MarginTarget:      d.MarginTarget,
		LaborPctTrailer:   d.LaborPctTrailer,
		LaborPctBoxTruck:  d.LaborPctBoxTruck,
		LaborPctMarine:    d.LaborPctMarine,
		Passes:            d.Passes,
		EstHours:          pricing.AutoHours(0),
	}
}

// Job is a stored quote: its editable inputs plus the last written snapshot.
type Job struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Notes     string            `json:"notes"`
	Inputs    pricing.JobInputs `json:"inputs"`
	Snapshot  Snapshot          `json:"snapshot"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// JobSummary is a row of the job list.
type JobSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Sale      float64   `json:"sale"`
	GPM       float64   `json:"gpm"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStore persists jobs and shop defaults.
type JobStore interface {
	// CreateJob stores a new job together with its first snapshot.
	CreateJob(ctx context.Context, title, notes string, in pricing.JobInputs, snap Snapshot) (Job, error)
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context, query string) ([]JobSummary, error)
	SaveInputs(ctx context.Context, id string, in pricing.JobInputs) error
	UpdateSnapshot(ctx context.Context, id string, snap Snapshot) error
	GetDefaults(ctx context.Context) (Defaults, error)
	UpdateDefaults(ctx context.Context, d Defaults) error
}

func encodeInputs(in pricing.JobInputs) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode job inputs: %w", err)
	}
	return string(data), nil
}

func decodeInputs(raw string) (pricing.JobInputs, error) {
	var in pricing.JobInputs
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return pricing.JobInputs{}, fmt.Errorf("decode job inputs: %w", err)
	}
	return in, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func searchPattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}
