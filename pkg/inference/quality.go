package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/adapters/tabular"
	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/logging"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// RelationshipQualityAnalyzer measures join health per business
// relationship: blank foreign keys, orphaned keys, coverage, and a severity
// grade. Each relationship needs two independent queries; failures leave the
// affected fields nil and never abort the batch.
type RelationshipQualityAnalyzer struct {
	runner     tabular.QueryRunner
	index      *MetadataIndex
	thresholds models.QualityThresholds
	logger     *zap.Logger
}

// NewRelationshipQualityAnalyzer builds an analyzer over one snapshot.
func NewRelationshipQualityAnalyzer(runner tabular.QueryRunner, index *MetadataIndex, thresholds models.QualityThresholds, logger *zap.Logger) *RelationshipQualityAnalyzer {
	return &RelationshipQualityAnalyzer{
		runner:     runner,
		index:      index,
		thresholds: thresholds,
		logger:     logger.Named("quality"),
	}
}

// Analyze measures every business relationship with bounded parallelism and
// returns the ranked report. The summary is bounded to topK entries; details
// carry everything. Final ordering depends only on the sort key, never on
// query completion order.
func (a *RelationshipQualityAnalyzer) Analyze(ctx context.Context, business []models.Relationship, pool *WorkerPool, topK int) *models.QualityReport {
	tasks := make([]Task[models.RelationshipQuality], 0, len(business))
	for _, rel := range business {
		tasks = append(tasks, Task[models.RelationshipQuality]{
			Key: relationshipKey(rel),
			Run: func(ctx context.Context) (models.RelationshipQuality, error) {
				return a.analyzeOne(ctx, rel), nil
			},
		})
	}

	results := RunTasks(ctx, pool, tasks)
	details := make([]models.RelationshipQuality, 0, len(results))
	for _, res := range results {
		details = append(details, res.Value)
	}
	sortQuality(details)
	a.logger.Debug("relationship quality measured", zap.Int("relationships", len(details)))

	if topK < 1 {
		topK = 1
	}
	summary := details
	if len(summary) > topK {
		summary = summary[:topK]
	}

	return &models.QualityReport{
		Summary:    append([]models.RelationshipQuality(nil), summary...),
		Details:    details,
		Lints:      a.buildLints(business, details),
		Thresholds: a.thresholds,
	}
}

// analyzeOne runs the blank-stats and orphan queries for one relationship.
// Query failures are recorded on the result, not returned.
func (a *RelationshipQualityAnalyzer) analyzeOne(ctx context.Context, rel models.Relationship) models.RelationshipQuality {
	q := models.RelationshipQuality{
		FromTable:  rel.FromTable,
		FromColumn: rel.FromColumn,
		ToTable:    rel.ToTable,
		ToColumn:   rel.ToColumn,
		Severity:   models.SeverityGreen,
	}
	if rel.FromTable == "" || rel.FromColumn == "" || rel.ToTable == "" || rel.ToColumn == "" {
		q.Error = "incomplete relationship endpoints"
		return q
	}

	fromKind := a.index.ColumnKind(rel.FromTable, rel.FromColumn)
	toKind := a.index.ColumnKind(rel.ToTable, rel.ToColumn)
	cmp := BuildComparison(rel.FromTable, rel.FromColumn, fromKind, rel.ToTable, rel.ToColumn, toKind)
	q.ComparisonKind = cmp.Kind
	q.TypeMismatch = cmp.Mismatch

	var errs []string

	blankQuery := dax.BlankStatsQuery(rel.FromTable, rel.FromColumn)
	if rs, err := a.runner.Execute(ctx, a.index.Dataset(), blankQuery, a.index.Workspace()); err != nil {
		errs = append(errs, fmt.Sprintf("blank stats: %s", logging.SanitizeError(err)))
	} else if row := rs.First(); row != nil {
		q.BlankRows = countField(row, "blank_fk")
		q.TotalRows = countField(row, "total_rows")
		q.DistinctKeys = countField(row, "distinct_fk")
	}

	orphanQuery := dax.OrphanQuery(rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn, cmp.FromExpr, cmp.ToExpr)
	if rs, err := a.runner.Execute(ctx, a.index.Dataset(), orphanQuery, a.index.Workspace()); err != nil {
		errs = append(errs, fmt.Sprintf("orphan check: %s", logging.SanitizeError(err)))
	} else if row := rs.First(); row != nil {
		q.OrphanKeys = countField(row, "orphan_fk")
	}

	if q.BlankRows != nil && q.TotalRows != nil && *q.TotalRows > 0 {
		ratio := float64(*q.BlankRows) / float64(*q.TotalRows)
		q.BlankRatio = &ratio
	}
	if q.OrphanKeys != nil && q.DistinctKeys != nil && *q.DistinctKeys > 0 {
		coverage := 1 - float64(*q.OrphanKeys)/float64(*q.DistinctKeys)
		q.Coverage = &coverage
	}

	q.Severity = a.grade(&q)
	q.Error = strings.Join(errs, "; ")
	return q
}

// grade applies the severity policy. Comparisons are strict: a blank ratio
// exactly at the RED bound grades YELLOW. Unmeasured ratios pass every
// check; ranking handles their placement separately.
func (a *RelationshipQualityAnalyzer) grade(q *models.RelationshipQuality) models.Severity {
	if (q.Coverage != nil && *q.Coverage < a.thresholds.CoverageRed) ||
		(q.BlankRatio != nil && *q.BlankRatio > a.thresholds.BlankRed) {
		return models.SeverityRed
	}
	if (q.Coverage != nil && *q.Coverage < a.thresholds.CoverageYellow) ||
		(q.BlankRatio != nil && *q.BlankRatio > a.thresholds.BlankYellow) {
		return models.SeverityYellow
	}
	return models.SeverityGreen
}

// buildLints emits structural advisories: dimensions reached through
// multiple key columns, and endpoint type mismatches.
func (a *RelationshipQualityAnalyzer) buildLints(business []models.Relationship, details []models.RelationshipQuality) []string {
	var lints []string

	keyColumns := make(map[string]map[string]bool)
	for _, rel := range business {
		if rel.ToTable == "" || rel.ToColumn == "" {
			continue
		}
		cols := keyColumns[rel.ToTable]
		if cols == nil {
			cols = make(map[string]bool)
			keyColumns[rel.ToTable] = cols
		}
		cols[rel.ToColumn] = true
	}
	dualKeyed := make([]string, 0)
	for table, cols := range keyColumns {
		if len(cols) >= 2 {
			dualKeyed = append(dualKeyed, table)
		}
	}
	sort.Strings(dualKeyed)
	for _, table := range dualKeyed {
		names := make([]string, 0, len(keyColumns[table]))
		for c := range keyColumns[table] {
			names = append(names, c)
		}
		sort.Strings(names)
		lints = append(lints, fmt.Sprintf(
			"dimension %s is joined through multiple key columns (%s); standardize on one surrogate key or add a bridge table",
			table, strings.Join(names, ", ")))
	}

	for i := range details {
		q := &details[i]
		if !q.TypeMismatch {
			continue
		}
		fromKind := a.index.ColumnKind(q.FromTable, q.FromColumn)
		toKind := a.index.ColumnKind(q.ToTable, q.ToColumn)
		lints = append(lints, fmt.Sprintf(
			"relationship %s[%s] -> %s[%s] endpoint types differ (%s vs %s); orphan check compared values as %s",
			q.FromTable, q.FromColumn, q.ToTable, q.ToColumn, fromKind, toKind, q.ComparisonKind))
	}

	return lints
}

// sortQuality orders worst-first: severity, then the badness indicator, then
// endpoint names so equal measurements stay deterministic.
func sortQuality(details []models.RelationshipQuality) {
	sort.SliceStable(details, func(i, j int) bool {
		a, b := &details[i], &details[j]
		if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
			return ra < rb
		}
		if ia, ib := a.Indicator(), b.Indicator(); ia != ib {
			return ia > ib
		}
		if a.FromTable != b.FromTable {
			return a.FromTable < b.FromTable
		}
		if a.FromColumn != b.FromColumn {
			return a.FromColumn < b.FromColumn
		}
		if a.ToTable != b.ToTable {
			return a.ToTable < b.ToTable
		}
		return a.ToColumn < b.ToColumn
	})
}

func relationshipKey(rel models.Relationship) string {
	return fmt.Sprintf("%s[%s]->%s[%s]", rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
}
