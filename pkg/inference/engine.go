package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/adapters/tabular"
	"github.com/wlvh/Process-SemanticModel/pkg/config"
	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// Engine runs the full inference pipeline over one model: snapshot the
// metadata, classify tables, reconstruct the star schema, resolve time axes,
// then (profile mode permitting) measure row counts, freshness anchors and
// relationship quality against live data.
type Engine struct {
	metadata tabular.MetadataProvider
	runner   tabular.QueryRunner
	cfg      config.ProfileConfig
	logger   *zap.Logger
}

// NewEngine wires the engine to its two collaborators.
func NewEngine(metadata tabular.MetadataProvider, runner tabular.QueryRunner, cfg config.ProfileConfig, logger *zap.Logger) *Engine {
	return &Engine{
		metadata: metadata,
		runner:   runner,
		cfg:      cfg,
		logger:   logger.Named("engine"),
	}
}

// factProfile is one fact's profiling slot, written exactly once by the
// fan-out.
type factProfile struct {
	rowCount *int64
	anchor   *models.TimeAnchorProfile
	enums    map[string][]models.EnumValue
}

// Run executes the pipeline and returns the output contract. Only a failed
// metadata snapshot is fatal; every later step degrades to nulls and
// warnings.
func (e *Engine) Run(ctx context.Context, dataset, workspace string) (*models.InferenceResult, error) {
	md, err := e.metadata.FetchMetadata(ctx, dataset, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot model metadata: %w", err)
	}

	index := NewMetadataIndex(md)
	business, stats := FilterBusiness(md.Relationships)
	adj := BuildAdjacency(business)
	roles := NewTableClassifier(index, adj).ClassifyAll()
	star := BuildStarSchema(roles, business)
	resolver := NewTimeAxisResolver(index, roles, business)
	dateAxis := resolver.ModelDateAxis()

	result := &models.InferenceResult{
		Version:       models.ContractVersion,
		Dataset:       dataset,
		Workspace:     workspace,
		GeneratedAt:   time.Now().UTC(),
		DateAxis:      dateAxis,
		Roles:         roles,
		Facts:         make(map[string]*models.FactSummary),
		Dimensions:    make(map[string]*models.DimensionSummary),
		Measures:      make(map[string]*models.MeasureSummary),
		Relationships: buildRelationshipSummaries(md.Relationships),
		Warnings:      append([]string(nil), md.Warnings...),
	}

	axes := make(map[string]models.FactTimeAxis)
	for table, role := range roles {
		switch role {
		case models.RoleFact:
			axis := resolver.FactTimeAxis(table, dateAxis)
			axes[table] = axis
			result.Facts[table] = &models.FactSummary{
				TimeAxis:   &axis,
				Dimensions: star[table],
			}
		case models.RoleDimension:
			label := PickLabelColumn(index, table)
			result.Dimensions[table] = &models.DimensionSummary{
				LabelColumn: label,
				Aliases:     ExpandAliases(table, label),
				KeyColumns:  dimensionKeyColumns(business, table),
				IsDateAxis:  dateAxis != nil && dateAxis.Table == table,
			}
		}
	}

	for _, m := range md.Measures {
		if m.IsHidden || m.Name == "" {
			continue
		}
		summary := &models.MeasureSummary{
			Table:     m.Table,
			Category:  CategorizeMeasure(m.Expression),
			Format:    m.FormatString,
			DependsOn: MeasureDependencies(m.Expression),
		}
		if e.cfg.IncludeExpressions {
			summary.Expression = m.Expression
		}
		result.Measures[m.Name] = summary
	}

	if dateAxis == nil {
		result.Warnings = append(result.Warnings, "no date dimension recognized; time anchors rely on fact-local columns only")
	}

	e.logger.Info("model classified",
		zap.String("dataset", dataset),
		zap.Int("facts", len(result.Facts)),
		zap.Int("dimensions", len(result.Dimensions)),
		zap.Int("business_relationships", stats.Business))

	mode := strings.ToLower(e.cfg.Mode)
	if mode != "off" {
		pool := NewWorkerPool(PoolConfig{MaxConcurrent: e.cfg.Concurrency}, e.logger)
		e.profileFacts(ctx, index, pool, axes, result)

		if mode == "standard" {
			analyzer := NewRelationshipQualityAnalyzer(e.runner, index, e.thresholds(), e.logger)
			result.Quality = analyzer.Analyze(ctx, business, pool, e.cfg.TopK)
		}
	}

	result.Counts = buildCounts(index, roles, stats, result)
	return result, nil
}

// profileFacts fans out per-fact profiling with bounded parallelism: row
// count, freshness anchor, and optionally enum samples, one task per fact.
func (e *Engine) profileFacts(ctx context.Context, index *MetadataIndex, pool *WorkerPool, axes map[string]models.FactTimeAxis, result *models.InferenceResult) {
	if len(result.Facts) == 0 {
		return
	}

	profiler := NewTimeAnchorProfiler(e.runner, index, e.logger)
	sampleEnums := strings.ToLower(e.cfg.Mode) == "standard" && e.cfg.IncludeEnums

	tasks := make([]Task[factProfile], 0, len(result.Facts))
	for fact := range result.Facts {
		tasks = append(tasks, Task[factProfile]{
			Key: fact,
			Run: func(ctx context.Context) (factProfile, error) {
				prof := factProfile{
					rowCount: e.fetchRowCount(ctx, index, fact),
					anchor:   profiler.Profile(ctx, fact, axes[fact]),
				}
				if sampleEnums {
					prof.enums = e.sampleEnums(ctx, index, fact)
				}
				return prof, nil
			},
		})
	}

	for _, res := range RunTasks(ctx, pool, tasks) {
		summary := result.Facts[res.Key]
		summary.RowCount = res.Value.rowCount
		summary.Profile = res.Value.anchor
		if len(res.Value.enums) > 0 {
			summary.EnumValues = res.Value.enums
		}
	}
}

func (e *Engine) fetchRowCount(ctx context.Context, index *MetadataIndex, fact string) *int64 {
	rs, err := e.runner.Execute(ctx, index.Dataset(), dax.RowCountQuery(fact), index.Workspace())
	if err != nil {
		e.logger.Debug("row count query failed", zap.String("fact", fact), zap.Error(err))
		return nil
	}
	if row := rs.First(); row != nil {
		return countField(row, "row_count")
	}
	return nil
}

// sampleEnums profiles the most frequent values of the fact's category-like
// text columns. Key and identifier columns are skipped; at most three
// columns are sampled per fact.
func (e *Engine) sampleEnums(ctx context.Context, index *MetadataIndex, fact string) map[string][]models.EnumValue {
	var candidates []string
	for _, col := range index.Columns(fact) {
		if col.IsHidden || NormalizeDataType(col.DataType) != models.KindText {
			continue
		}
		n := strings.ToLower(col.Name)
		if strings.Contains(n, "key") || strings.Contains(n, "id") || strings.Contains(n, "guid") {
			continue
		}
		candidates = append(candidates, col.Name)
		if len(candidates) == 3 {
			break
		}
	}

	enums := make(map[string][]models.EnumValue)
	for _, col := range candidates {
		rs, err := e.runner.Execute(ctx, index.Dataset(), dax.EnumTopValuesQuery(fact, col, e.cfg.MaxEnumValues), index.Workspace())
		if err != nil {
			e.logger.Debug("enum sample query failed",
				zap.String("fact", fact),
				zap.String("column", col),
				zap.Error(err))
			continue
		}
		values := make([]models.EnumValue, 0, len(rs.Rows))
		for _, row := range rs.Rows {
			v := row.String(tabular.NormalizeKey(col))
			if v == "" {
				continue
			}
			rows, _ := row.Int64("cnt")
			values = append(values, models.EnumValue{Value: v, Rows: rows})
		}
		if len(values) > 0 {
			enums[col] = values
		}
	}
	if len(enums) == 0 {
		return nil
	}
	return enums
}

func (e *Engine) thresholds() models.QualityThresholds {
	if e.cfg.Thresholds == (models.QualityThresholds{}) {
		return models.DefaultQualityThresholds()
	}
	return e.cfg.Thresholds
}

// buildRelationshipSummaries lists every relationship between business
// tables, inactive ones included. Inactive relationships carry a ready-made
// activation hint.
func buildRelationshipSummaries(rels []models.Relationship) []models.RelationshipSummary {
	summaries := make([]models.RelationshipSummary, 0, len(rels))
	for _, rel := range rels {
		if IsAutoDateTable(rel.FromTable) || IsAutoDateTable(rel.ToTable) {
			continue
		}
		s := models.RelationshipSummary{
			FromTable:   rel.FromTable,
			FromColumn:  rel.FromColumn,
			ToTable:     rel.ToTable,
			ToColumn:    rel.ToColumn,
			Active:      rel.IsActive,
			CrossFilter: rel.CrossFilter,
		}
		if !rel.IsActive && rel.FromTable != "" && rel.FromColumn != "" && rel.ToTable != "" && rel.ToColumn != "" {
			s.UseRelationshipHint = fmt.Sprintf("USERELATIONSHIP(%s, %s)",
				dax.ColumnRef(rel.FromTable, rel.FromColumn),
				dax.ColumnRef(rel.ToTable, rel.ToColumn))
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := &summaries[i], &summaries[j]
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
	return summaries
}

// dimensionKeyColumns lists the distinct columns a dimension is joined on.
func dimensionKeyColumns(business []models.Relationship, dim string) []string {
	seen := make(map[string]bool)
	for _, rel := range business {
		if rel.ToTable == dim && rel.ToColumn != "" {
			seen[rel.ToColumn] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func buildCounts(index *MetadataIndex, roles map[string]models.TableRole, stats FilterStats, result *models.InferenceResult) models.ContractCounts {
	counts := models.ContractCounts{
		Relationships:         stats.Total,
		BusinessRelationships: stats.Business,
		InactiveFiltered:      stats.InactiveFiltered,
		AutoDateFiltered:      stats.AutoDateFiltered,
		Measures:              len(result.Measures),
	}
	for _, t := range index.BusinessTables() {
		counts.Tables++
		counts.Columns += len(index.Columns(t.Name))
		switch roles[t.Name] {
		case models.RoleFact:
			counts.Facts++
		case models.RoleDimension:
			counts.Dimensions++
		case models.RoleBridge:
			counts.Bridges++
		default:
			counts.Other++
		}
	}
	return counts
}
