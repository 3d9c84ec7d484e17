package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
)

// PostgresStore keeps jobs in Postgres through a pgx pool. It shares the
// schema of the SQLite store.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore uses pool for every query.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// CreateJob inserts a job with a generated id and its first snapshot.
func (s *PostgresStore) CreateJob(ctx context.Context, title, notes string, in pricing.JobInputs, snap Snapshot) (Job, error) {
	inputsJSON, err := encodeInputs(in)
	if err != nil {
		return Job{}, err
	}

	stamp := formatTime(s.now())
	job := Job{
		ID:        uuid.NewString(),
		Title:     title,
		Notes:     notes,
		Inputs:    in,
		Snapshot:  snap,
		CreatedAt: parseTime(stamp),
		UpdatedAt: parseTime(stamp),
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO jobs (
			id, title, notes, inputs_json,
			sale, cogs, profit, gpm, commission, labor, labor_hours, material, design_fee, misc,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	`,
		job.ID, title, notes, inputsJSON,
		snap.Sale, snap.Cogs, snap.Profit, snap.GPM, snap.Commission,
		snap.Labor, snap.LaborHours, snap.Material, snap.DesignFee, snap.Misc,
		stamp,
	)
	if err != nil {
		return Job{}, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

// GetJob returns ErrNotFound when id does not exist.
func (s *PostgresStore) GetJob(ctx context.Context, id string) (Job, error) {
	var (
		job        Job
		inputsJSON string
		createdAt  string
		updatedAt  string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT
			id, title, notes, inputs_json,
			sale, cogs, profit, gpm, commission, labor, labor_hours, material, design_fee, misc,
			created_at, updated_at
		FROM jobs
		WHERE id = $1
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
	if errors.Is(err, pgx.ErrNoRows) {
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

// ListJobs returns jobs newest first, filtered like SQLiteStore.ListJobs.
func (s *PostgresStore) ListJobs(ctx context.Context, query string) ([]JobSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, sale, gpm, created_at
		FROM jobs
		WHERE ($1 = '' OR LOWER(title) LIKE $2 OR LOWER(notes) LIKE $2)
		ORDER BY created_at DESC, id DESC
	`, query, searchPattern(query))
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

// SaveInputs replaces the inputs of job id.
func (s *PostgresStore) SaveInputs(ctx context.Context, id string, in pricing.JobInputs) error {
	inputsJSON, err := encodeInputs(in)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET inputs_json = $1, updated_at = $2
		WHERE id = $3
	`, inputsJSON, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("update job inputs: %w", err)
	}
	return requireTag(tag)
}

// UpdateSnapshot overwrites the stored financial summary of job id.
func (s *PostgresStore) UpdateSnapshot(ctx context.Context, id string, snap Snapshot) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET
			sale = $1,
			cogs = $2,
			profit = $3,
			gpm = $4,
			commission = $5,
			labor = $6,
			labor_hours = $7,
			material = $8,
			design_fee = $9,
			misc = $10,
			updated_at = $11
		WHERE id = $12
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
	return requireTag(tag)
}

// GetDefaults returns FallbackDefaults until defaults have been saved.
func (s *PostgresStore) GetDefaults(ctx context.Context) (Defaults, error) {
	var d Defaults
	err := s.pool.QueryRow(ctx, `
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
	if errors.Is(err, pgx.ErrNoRows) {
		return FallbackDefaults, nil
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("query quote_defaults: %w", err)
	}
	return d, nil
}

// UpdateDefaults upserts the single defaults row.
func (s *PostgresStore) UpdateDefaults(ctx context.Context, d Defaults) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quote_defaults (
			id, design_fee, misc_costs, rate_per_hour, margin_target,
			labor_pct_trailer, labor_pct_box_truck, labor_pct_marine, passes, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			design_fee = EXCLUDED.design_fee,
			misc_costs = EXCLUDED.misc_costs,
			rate_per_hour = EXCLUDED.rate_per_hour,
			margin_target = EXCLUDED.margin_target,
			labor_pct_trailer = EXCLUDED.labor_pct_trailer,
			labor_pct_box_truck = EXCLUDED.labor_pct_box_truck,
			labor_pct_marine = EXCLUDED.labor_pct_marine,
			passes = EXCLUDED.passes,
			updated_at = EXCLUDED.updated_at
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

func requireTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
