package seed

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/migrations"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

const (
	sampleJobTitle  = "Sample: mid-size car full wrap"
	sampleJobPreset = "med_car"
)

// Config contains the values required by startup seed.
type Config struct {
	// Dialect is the goose dialect of db; it decides the placeholder style.
	Dialect string
	Presets pricing.Presets
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	now := time.Now().UTC().Format(store.TimeLayout)

	if err := ensureQuoteDefaults(tx, cfg.Dialect, now, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSampleJob(tx, cfg, now, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureQuoteDefaults(tx *sql.Tx, dialect, now string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM quote_defaults WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check quote defaults existence: %w", err)
	}
	if exists {
		return nil
	}

	d := store.FallbackDefaults
	if _, err := tx.Exec(rebind(dialect, `
		INSERT INTO quote_defaults (
			id,
			design_fee,
			misc_costs,
			rate_per_hour,
			margin_target,
			labor_pct_trailer,
			labor_pct_box_truck,
			labor_pct_marine,
			passes,
			updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), d.DesignFee, d.MiscCosts, d.RatePerHour, d.MarginTarget, d.LaborPctTrailer, d.LaborPctBoxTruck, d.LaborPctMarine, d.Passes, now); err != nil {
		return fmt.Errorf("insert quote defaults singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSampleJob(tx *sql.Tx, cfg Config, now string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(rebind(cfg.Dialect, `SELECT EXISTS(SELECT 1 FROM jobs WHERE title = ?)`), sampleJobTitle).Scan(&exists); err != nil {
		return fmt.Errorf("check sample job existence: %w", err)
	}
	if exists {
		return nil
	}

	in := pricing.ApplyVehiclePreset(store.FallbackDefaults.NewInputs(), cfg.Presets, sampleJobPreset)
	financials := pricing.Calculate(in, cfg.Presets)
	in.EstHours = in.EstHours.Sync(financials.Hours)
	snap := store.SnapshotOf(financials)

	inputsJSON, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode sample job inputs: %w", err)
	}

	if _, err := tx.Exec(rebind(cfg.Dialect, `
		INSERT INTO jobs (
			id, title, notes, inputs_json,
			sale, cogs, profit, gpm, commission, labor, labor_hours, material, design_fee, misc,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		uuid.NewString(), sampleJobTitle, "Seeded for local development.", string(inputsJSON),
		snap.Sale, snap.Cogs, snap.Profit, snap.GPM, snap.Commission, snap.Labor, snap.LaborHours, snap.Material, snap.DesignFee, snap.Misc,
		now, now,
	); err != nil {
		return fmt.Errorf("insert sample job: %w", err)
	}
	stats.Inserts++
	return nil
}

// rebind rewrites ? placeholders as $n for Postgres.
func rebind(dialect, query string) string {
	if dialect != migrations.PostgresDialect {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
