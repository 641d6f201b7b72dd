// Package repositories provides PostgreSQL data access for persisted
// inference runs.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
	"github.com/wlvh/Process-SemanticModel/pkg/database"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// RunRepository defines data access for inference run history.
type RunRepository interface {
	// Save inserts one completed run.
	Save(ctx context.Context, run *models.InferenceRun) error

	// List returns recent runs newest-first, without contract payloads.
	// An empty dataset lists runs across all datasets.
	List(ctx context.Context, dataset string, limit int) ([]*models.InferenceRun, error)

	// Get retrieves one run including its stored contract.
	Get(ctx context.Context, id uuid.UUID) (*models.InferenceRun, error)
}

// runRepository implements RunRepository using PostgreSQL.
type runRepository struct {
	db *database.DB
}

// NewRunRepository creates a run repository on an open pool.
func NewRunRepository(db *database.DB) RunRepository {
	return &runRepository{db: db}
}

var _ RunRepository = (*runRepository)(nil)

const defaultListLimit = 20

func (r *runRepository) Save(ctx context.Context, run *models.InferenceRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if len(run.Contract) == 0 {
		return fmt.Errorf("run %s has no contract payload", run.ID)
	}

	query := `
		INSERT INTO inference_runs (
			id, dataset, workspace, facts, dimensions, relationships,
			worst_severity, warnings, contract, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.Dataset,
		run.Workspace,
		run.Facts,
		run.Dimensions,
		run.Relationships,
		string(run.WorstSeverity),
		run.Warnings,
		run.Contract,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save inference run: %w", err)
	}
	return nil
}

func (r *runRepository) List(ctx context.Context, dataset string, limit int) ([]*models.InferenceRun, error) {
	if limit < 1 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, dataset, workspace, facts, dimensions, relationships,
		       worst_severity, warnings, created_at
		FROM inference_runs
		WHERE ($1 = '' OR dataset = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inference runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.InferenceRun
	for rows.Next() {
		var run models.InferenceRun
		var severity string
		if err := rows.Scan(
			&run.ID,
			&run.Dataset,
			&run.Workspace,
			&run.Facts,
			&run.Dimensions,
			&run.Relationships,
			&severity,
			&run.Warnings,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inference run: %w", err)
		}
		run.WorstSeverity = models.Severity(severity)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inference runs: %w", err)
	}
	return runs, nil
}

func (r *runRepository) Get(ctx context.Context, id uuid.UUID) (*models.InferenceRun, error) {
	query := `
		SELECT id, dataset, workspace, facts, dimensions, relationships,
		       worst_severity, warnings, contract, created_at
		FROM inference_runs
		WHERE id = $1`

	var run models.InferenceRun
	var severity string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Dataset,
		&run.Workspace,
		&run.Facts,
		&run.Dimensions,
		&run.Relationships,
		&severity,
		&run.Warnings,
		&run.Contract,
		&run.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inference run: %w", err)
	}
	run.WorstSeverity = models.Severity(severity)
	return &run, nil
}

// NewRunFromResult builds the history row for one engine result. The full
// contract is stored as its JSON form.
func NewRunFromResult(result *models.InferenceResult, contract []byte) *models.InferenceRun {
	run := &models.InferenceRun{
		ID:            uuid.New(),
		Dataset:       result.Dataset,
		Workspace:     result.Workspace,
		Facts:         result.Counts.Facts,
		Dimensions:    result.Counts.Dimensions,
		Relationships: result.Counts.BusinessRelationships,
		Warnings:      len(result.Warnings),
		Contract:      contract,
		CreatedAt:     result.GeneratedAt,
	}
	if result.Quality != nil {
		worst := models.SeverityGreen
		for _, d := range result.Quality.Details {
			if d.Severity.Rank() < worst.Rank() {
				worst = d.Severity
			}
		}
		if len(result.Quality.Details) > 0 {
			run.WorstSeverity = worst
		}
	}
	return run
}
