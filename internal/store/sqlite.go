package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
)

// SQLiteStore keeps jobs in a SQLite database opened with db.Open.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps a migrated SQLite database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// CreateJob inserts a job with a generated id and its first snapshot.
func (s *SQLiteStore) CreateJob(ctx context.Context, title, notes string, in pricing.JobInputs, snap Snapshot) (Job, error) {
	inputsJSON, err := encodeInputs(in)
	if err != nil {
		return Job{}, err
	}

	now := s.now().UTC()
	job := Job{
		ID:        uuid.NewString(),
		Title:     title,
		Notes:     notes,
		Inputs:    in,
		Snapshot:  snap,
		CreatedAt: parseTime(formatTime(now)),
		UpdatedAt: parseTime(formatTime(now)),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, title, notes, inputs_json,
			sale, cogs, profit, gpm, commission, labor, labor_hours, material, design_fee, misc,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID, title, notes, inputsJSON,
		snap.Sale, snap.Cogs, snap.Profit, snap.GPM, snap.Commission,
		snap.Labor, snap.LaborHours, snap.Material, snap.DesignFee, snap.Misc,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return Job{}, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

// GetJob returns ErrNotFound when id does not exist.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (Job, error) {
	var (
		job        Job
		inputsJSON string
		createdAt  string
		updatedAt  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id, title, notes, inputs_json,
			sale, cogs, profit, gpm, commission, labor, labor_hours, material, design_fee, misc,
			created_at, updated_at
		FROM jobs
		WHERE id = ?
	`, id).Scan(
		&job.ID, &job.Title, &job.Notes, &inputsJSON,
		&job.Snapshot.Sale,
		&job.Snapshot.Cogs,
		&job.Snapshot.Profit,
		&job.Snapshot.GPM,
		&job.Snapshot.Commission,
		&job.Snapshot.Labor,
		&job.Snapshot.LaborHours,
		&job.Snapshot.Material,
		&job.Snapshot.DesignFee,
		&job.Snapshot.Misc,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("query job: %w", err)
	}

	if job.Inputs, err = decodeInputs(inputsJSON); err != nil {
		return Job{}, err
	}
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return job, nil
}

// ListJobs returns jobs newest first. A non-empty query matches title or
// notes, ignoring case.
func (s *SQLiteStore) ListJobs(ctx context.Context, query string) ([]JobSummary, error) {
	search := searchPattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, sale, gpm, created_at
		FROM jobs
		WHERE (? = '' OR LOWER(title) LIKE ? OR LOWER(notes) LIKE ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]JobSummary, 0)
	for rows.Next() {
		var item JobSummary
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Title, &item.Sale, &item.GPM, &createdAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		item.CreatedAt = parseTime(createdAt)
		jobs = append(jobs, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}

// SaveInputs replaces the inputs of job id and leaves its snapshot alone.
func (s *SQLiteStore) SaveInputs(ctx context.Context, id string, in pricing.JobInputs) error {
	inputsJSON, err := encodeInputs(in)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET inputs_json = ?, updated_at = ?
		WHERE id = ?
	`, inputsJSON, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("update job inputs: %w", err)
	}
	return requireRow(result)
}

// UpdateSnapshot overwrites the stored financial summary of job id.
func (s *SQLiteStore) UpdateSnapshot(ctx context.Context, id string, snap Snapshot) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET
			sale = ?,
			cogs = ?,
			profit = ?,
			gpm = ?,
			commission = ?,
			labor = ?,
			labor_hours = ?,
			material = ?,
			design_fee = ?,
			misc = ?,
			updated_at = ?
		WHERE id = ?
	`,
		snap.Sale,
		snap.Cogs,
		snap.Profit,
		snap.GPM,
		snap.Commission,
		snap.Labor,
		snap.LaborHours,
		snap.Material,
		snap.DesignFee,
		snap.Misc,
		formatTime(s.now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update job snapshot: %w", err)
	}
	return requireRow(result)
}

// GetDefaults returns FallbackDefaults until defaults have been saved.
func (s *SQLiteStore) GetDefaults(ctx context.Context) (Defaults, error) {
	var d Defaults
	err := s.db.QueryRowContext(ctx, `
		SELECT design_fee, misc_costs, rate_per_hour, margin_target, labor_pct_trailer, labor_pct_box_truck, labor_pct_marine, passes
		FROM quote_defaults
		WHERE id = 1
	`).Scan(
		&d.DesignFee,
		&d.MiscCosts,
		&d.RatePerHour,
		&d.MarginTarget,
		&d.LaborPctTrailer,
		&d.LaborPctBoxTruck,
		&d.LaborPctMarine,
		&d.Passes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return FallbackDefaults, nil
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("query quote_defaults: %w", err)
	}
	return d, nil
}

// UpdateDefaults upserts the single defaults row.
func (s *SQLiteStore) UpdateDefaults(ctx context.Context, d Defaults) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_defaults (
			id, design_fee, misc_costs, rate_per_hour, margin_target,
			labor_pct_trailer, labor_pct_box_truck, labor_pct_marine, passes, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			design_fee = excluded.design_fee,
			misc_costs = excluded.misc_costs,
			rate_per_hour = excluded.rate_per_hour,
			margin_target = excluded.margin_target,
			labor_pct_trailer = excluded.labor_pct_trailer,
			labor_pct_box_truck = excluded.labor_pct_box_truck,
			labor_pct_marine = excluded.labor_pct_marine,
			passes = excluded.passes,
			updated_at = excluded.updated_at
	`,
		d.DesignFee,
		d.MiscCosts,
		d.RatePerHour,
		d.MarginTarget,
		d.LaborPctTrailer,
		d.LaborPctBoxTruck,
		d.LaborPctMarine,
		d.Passes,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("upsert quote_defaults: %w", err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
