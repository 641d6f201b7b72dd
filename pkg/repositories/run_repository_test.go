package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
	"github.com/wlvh/Process-SemanticModel/pkg/testhelpers"
)

// runTestContext holds shared test dependencies for run repository tests.
type runTestContext struct {
	t    *testing.T
	db   *testhelpers.HistoryDB
	repo RunRepository
}

func setupRunTest(t *testing.T) *runTestContext {
	db := testhelpers.GetHistoryDB(t)
	return &runTestContext{
		t:    t,
		db:   db,
		repo: NewRunRepository(db.DB),
	}
}

// cleanup removes rows written by this test's dataset.
func (tc *runTestContext) cleanup(dataset string) {
	tc.t.Helper()
	_, _ = tc.db.DB.Exec(context.Background(),
		"DELETE FROM inference_runs WHERE dataset = $1", dataset)
}

func (tc *runTestContext) newRun(dataset string, created time.Time) *models.InferenceRun {
	contract, _ := json.Marshal(map[string]any{"version": models.ContractVersion, "dataset": dataset})
	return &models.InferenceRun{
		ID:            uuid.New(),
		Dataset:       dataset,
		Workspace:     "11111111-2222-3333-4444-555555555555",
		Facts:         3,
		Dimensions:    7,
		Relationships: 12,
		WorstSeverity: models.SeverityYellow,
		Warnings:      1,
		Contract:      contract,
		CreatedAt:     created,
	}
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	tc := setupRunTest(t)
	dataset := "f0e1d2c3-0001-4000-8000-000000000001"
	defer tc.cleanup(dataset)

	ctx := context.Background()
	run := tc.newRun(dataset, time.Now().UTC().Truncate(time.Microsecond))

	if err := tc.repo.Save(ctx, run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := tc.repo.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Dataset != run.Dataset {
		t.Errorf("dataset = %q, want %q", got.Dataset, run.Dataset)
	}
	if got.Facts != run.Facts || got.Dimensions != run.Dimensions || got.Relationships != run.Relationships {
		t.Errorf("counts = %d/%d/%d, want %d/%d/%d",
			got.Facts, got.Dimensions, got.Relationships,
			run.Facts, run.Dimensions, run.Relationships)
	}
	if got.WorstSeverity != models.SeverityYellow {
		t.Errorf("worst severity = %q, want YELLOW", got.WorstSeverity)
	}

	var stored map[string]any
	if err := json.Unmarshal(got.Contract, &stored); err != nil {
		t.Fatalf("stored contract is not valid JSON: %v", err)
	}
	if stored["version"] != models.ContractVersion {
		t.Errorf("stored contract version = %v, want %q", stored["version"], models.ContractVersion)
	}
}

func TestRunRepository_SaveRejectsEmptyContract(t *testing.T) {
	tc := setupRunTest(t)

	run := tc.newRun("f0e1d2c3-0002-4000-8000-000000000002", time.Now().UTC())
	run.Contract = nil

	if err := tc.repo.Save(context.Background(), run); err == nil {
		t.Fatal("expected error for run without contract payload")
	}
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	tc := setupRunTest(t)
	dataset := "f0e1d2c3-0003-4000-8000-000000000003"
	defer tc.cleanup(dataset)

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := tc.newRun(dataset, base.Add(time.Duration(i)*time.Minute))
		if err := tc.repo.Save(ctx, run); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := tc.repo.List(ctx, dataset, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List returned %d runs, want 3", len(runs))
	}
	// Newest first: the last saved run leads.
	if runs[0].ID != ids[2] {
		t.Errorf("first listed run = %s, want newest %s", runs[0].ID, ids[2])
	}
	for i := 0; i+1 < len(runs); i++ {
		if runs[i].CreatedAt.Before(runs[i+1].CreatedAt) {
			t.Errorf("runs out of order at %d: %v before %v", i, runs[i].CreatedAt, runs[i+1].CreatedAt)
		}
	}
	// Listings omit the contract payload.
	if len(runs[0].Contract) != 0 {
		t.Error("List should not carry contract payloads")
	}
}

func TestRunRepository_ListHonorsLimit(t *testing.T) {
	tc := setupRunTest(t)
	dataset := "f0e1d2c3-0004-4000-8000-000000000004"
	defer tc.cleanup(dataset)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		run := tc.newRun(dataset, time.Now().UTC().Add(time.Duration(i)*time.Second))
		if err := tc.repo.Save(ctx, run); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	runs, err := tc.repo.List(ctx, dataset, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("List returned %d runs, want 2", len(runs))
	}
}

func TestRunRepository_GetMissing(t *testing.T) {
	tc := setupRunTest(t)

	_, err := tc.repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get on missing run = %v, want ErrNotFound", err)
	}
}

func TestNewRunFromResult(t *testing.T) {
	result := &models.InferenceResult{
		Version:     models.ContractVersion,
		Dataset:     "d",
		Workspace:   "w",
		GeneratedAt: time.Now().UTC(),
		Counts: models.ContractCounts{
			Facts:                 2,
			Dimensions:            5,
			BusinessRelationships: 9,
		},
		Warnings: []string{"one", "two"},
		Quality: &models.QualityReport{
			Details: []models.RelationshipQuality{
				{Severity: models.SeverityGreen},
				{Severity: models.SeverityRed},
				{Severity: models.SeverityYellow},
			},
		},
	}
	contract, _ := json.Marshal(result)

	run := NewRunFromResult(result, contract)

	if run.Facts != 2 || run.Dimensions != 5 || run.Relationships != 9 {
		t.Errorf("counts = %d/%d/%d, want 2/5/9", run.Facts, run.Dimensions, run.Relationships)
	}
	if run.WorstSeverity != models.SeverityRed {
		t.Errorf("worst severity = %q, want RED", run.WorstSeverity)
	}
	if run.Warnings != 2 {
		t.Errorf("warnings = %d, want 2", run.Warnings)
	}
	if run.ID == uuid.Nil {
		t.Error("run ID not assigned")
	}
}
