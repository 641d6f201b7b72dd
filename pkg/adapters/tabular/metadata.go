package tabular

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/logging"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// InfoViewProvider snapshots model metadata through the INFO.VIEW functions.
// The four categories are fetched concurrently. A category the model cannot
// list (older compatibility levels, restricted tokens) degrades to an empty
// slice plus a warning; the snapshot fails only when every category fails.
type InfoViewProvider struct {
	runner QueryRunner
	logger *zap.Logger
}

var _ MetadataProvider = (*InfoViewProvider)(nil)

// NewInfoViewProvider creates a metadata provider on top of a query runner.
func NewInfoViewProvider(runner QueryRunner, logger *zap.Logger) *InfoViewProvider {
	return &InfoViewProvider{
		runner: runner,
		logger: logger.Named("metadata"),
	}
}

// FetchMetadata lists tables, columns, measures and relationships.
func (p *InfoViewProvider) FetchMetadata(ctx context.Context, dataset, workspace string) (*models.ModelMetadata, error) {
	md := &models.ModelMetadata{
		Dataset:   dataset,
		Workspace: workspace,
		FetchedAt: time.Now().UTC(),
	}

	categories := []struct {
		name  string
		query string
		apply func(*RowSet)
	}{
		{"tables", dax.TablesQuery(), func(rs *RowSet) { md.Tables = mapTables(rs) }},
		{"columns", dax.ColumnsQuery(), func(rs *RowSet) { md.Columns = mapColumns(rs) }},
		{"measures", dax.MeasuresQuery(), func(rs *RowSet) { md.Measures = mapMeasures(rs) }},
		{"relationships", dax.RelationshipsQuery(), func(rs *RowSet) { md.Relationships = mapRelationships(rs) }},
	}

	errs := make([]error, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range categories {
		g.Go(func() error {
			rs, err := p.runner.Execute(gctx, dataset, cat.query, workspace)
			if err != nil {
				errs[i] = err
				return nil
			}
			cat.apply(rs)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		p.logger.Warn("metadata category unavailable",
			zap.String("category", categories[i].name),
			zap.Error(err))
		md.Warnings = append(md.Warnings, fmt.Sprintf("failed to list %s: %s", categories[i].name, logging.SanitizeError(err)))
	}
	if failed == len(categories) {
		return nil, fmt.Errorf("no metadata category could be listed: %w", apperrors.ErrMetadataUnavailable)
	}

	p.logger.Info("metadata fetched",
		zap.String("dataset", dataset),
		zap.Int("tables", len(md.Tables)),
		zap.Int("columns", len(md.Columns)),
		zap.Int("measures", len(md.Measures)),
		zap.Int("relationships", len(md.Relationships)))

	return md, nil
}

func mapTables(rs *RowSet) []models.Table {
	tables := make([]models.Table, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name := row.String("table_name")
		if name == "" {
			continue
		}
		tables = append(tables, models.Table{
			Name:        name,
			IsHidden:    row.Bool("is_hidden"),
			StorageMode: row.String("storage_mode"),
			Description: row.String("description"),
		})
	}
	return tables
}

func mapColumns(rs *RowSet) []models.Column {
	columns := make([]models.Column, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		table := row.String("table_name")
		name := row.String("column_name")
		if table == "" || name == "" {
			continue
		}
		columns = append(columns, models.Column{
			Table:    table,
			Name:     name,
			DataType: row.String("data_type"),
			IsHidden: row.Bool("is_hidden"),
		})
	}
	return columns
}

func mapMeasures(rs *RowSet) []models.Measure {
	measures := make([]models.Measure, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name := row.String("measure_name")
		if name == "" {
			continue
		}
		measures = append(measures, models.Measure{
			Table:        row.String("table_name"),
			Name:         name,
			Expression:   row.String("expression"),
			FormatString: row.String("format_string"),
			IsHidden:     row.Bool("is_hidden"),
		})
	}
	return measures
}

func mapRelationships(rs *RowSet) []models.Relationship {
	rels := make([]models.Relationship, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rel := models.Relationship{
			FromTable:       row.String("from_table"),
			FromColumn:      row.String("from_column"),
			ToTable:         row.String("to_table"),
			ToColumn:        row.String("to_column"),
			IsActive:        row.Bool("is_active"),
			CrossFilter:     row.String("cross_filter"),
			FromCardinality: row.String("from_cardinality"),
			ToCardinality:   row.String("to_cardinality"),
		}
		if rel.FromTable == "" || rel.ToTable == "" {
			continue
		}
		rels = append(rels, rel)
	}
	return rels
}
