package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/adapters/tabular"
	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// TimeAnchorProfiler computes a data-driven freshness anchor per fact table.
// Strategies run in fixed order; the first one that yields a non-blank
// anchor is terminal and its name is recorded as provenance. A query failure
// or empty result advances to the next strategy, never aborts the sequence.
type TimeAnchorProfiler struct {
	runner tabular.QueryRunner
	index  *MetadataIndex
	logger *zap.Logger
}

// NewTimeAnchorProfiler builds a profiler over one snapshot.
func NewTimeAnchorProfiler(runner tabular.QueryRunner, index *MetadataIndex, logger *zap.Logger) *TimeAnchorProfiler {
	return &TimeAnchorProfiler{
		runner: runner,
		index:  index,
		logger: logger.Named("anchor"),
	}
}

// dateCandidate is one ranked anchor-column candidate. Text-typed columns
// with date-flavored names participate through the literal parser.
type dateCandidate struct {
	column    string
	valueExpr string
	parsed    bool
}

// Profile resolves the freshness anchor for one fact. The axis argument is
// the fact's resolved time axis; via-key profiling is skipped when it
// carries no relationship.
func (p *TimeAnchorProfiler) Profile(ctx context.Context, fact string, axis models.FactTimeAxis) *models.TimeAnchorProfile {
	if fact == "" {
		panic("inference: empty fact table name")
	}

	candidates := p.rankedCandidates(fact)

	if prof := p.tryDirect(ctx, fact, candidates); prof != nil {
		return prof
	}
	if prof := p.tryViaKey(ctx, fact, axis); prof != nil {
		return prof
	}
	if prof := p.tryCoalesce(ctx, fact); prof != nil {
		return prof
	}

	fallback := &models.TimeAnchorProfile{Source: models.AnchorFallback}
	if len(candidates) > 0 {
		fallback.AnchorColumn = candidates[0].column
	}
	return fallback
}

// tryDirect profiles the fact's own date columns, best-ranked first.
func (p *TimeAnchorProfiler) tryDirect(ctx context.Context, fact string, candidates []dateCandidate) *models.TimeAnchorProfile {
	for _, cand := range candidates {
		query := dax.DirectAnchorQuery(fact, cand.column, cand.valueExpr)
		rs, err := p.runner.Execute(ctx, p.index.Dataset(), query, p.index.Workspace())
		if err != nil {
			p.logger.Debug("direct anchor query failed",
				zap.String("fact", fact),
				zap.String("column", cand.column),
				zap.Error(err))
			continue
		}
		if prof := profileFromRow(rs.First(), models.AnchorDirect, cand.column, cand.column); prof != nil {
			return prof
		}
	}
	return nil
}

// tryViaKey profiles through the date dimension when the fact joins one.
// The fact's keys are converted toward the dimension key's type to restrict
// the dimension; the window's keys are converted back toward the fact key's
// type to count fact rows.
func (p *TimeAnchorProfiler) tryViaKey(ctx context.Context, fact string, axis models.FactTimeAxis) *models.TimeAnchorProfile {
	if !axis.HasDateAxis || axis.FactKeyColumn == "" || axis.DimensionTable == "" || axis.DimensionKey == "" || axis.DateColumn == "" {
		return nil
	}

	factKind := p.index.ColumnKind(fact, axis.FactKeyColumn)
	dimKind := p.index.ColumnKind(axis.DimensionTable, axis.DimensionKey)
	factKeyExpr := coerceExpr(dax.ColumnRef(fact, axis.FactKeyColumn), factKind, dimKind)
	dimKeyExpr := coerceExpr(dax.ColumnRef(axis.DimensionTable, axis.DimensionKey), dimKind, factKind)

	query := dax.ViaKeyAnchorQuery(fact, axis.FactKeyColumn, axis.DimensionTable, axis.DimensionKey, axis.DateColumn, factKeyExpr, dimKeyExpr)
	rs, err := p.runner.Execute(ctx, p.index.Dataset(), query, p.index.Workspace())
	if err != nil {
		p.logger.Debug("via-key anchor query failed",
			zap.String("fact", fact),
			zap.String("dimension", axis.DimensionTable),
			zap.Error(err))
		return nil
	}
	return profileFromRow(rs.First(), models.AnchorViaKey, axis.DateColumn, axis.FactKeyColumn)
}

// tryCoalesce synthesizes a per-row first-non-blank across the fact's best
// date columns. Needs at least two real date-typed columns; uses at most
// three.
func (p *TimeAnchorProfiler) tryCoalesce(ctx context.Context, fact string) *models.TimeAnchorProfile {
	dateCols := p.index.DateColumns(fact)
	if len(dateCols) < 2 {
		return nil
	}

	names := make([]string, 0, len(dateCols))
	for _, c := range dateCols {
		names = append(names, c.Name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return dateRelevance(names[i]) > dateRelevance(names[j])
	})
	if len(names) > 3 {
		names = names[:3]
	}

	query := dax.CoalesceAnchorQuery(fact, names)
	rs, err := p.runner.Execute(ctx, p.index.Dataset(), query, p.index.Workspace())
	if err != nil {
		p.logger.Debug("coalesce anchor query failed",
			zap.String("fact", fact),
			zap.Strings("columns", names),
			zap.Error(err))
		return nil
	}

	label := fmt.Sprintf("COALESCE(%s)", strings.Join(names, ", "))
	return profileFromRow(rs.First(), models.AnchorCoalesce, label, names[0])
}

// rankedCandidates lists the fact's anchor candidates by name relevance:
// date-typed columns as bare references, text-typed columns with a
// date-flavored name through the literal parser.
func (p *TimeAnchorProfiler) rankedCandidates(fact string) []dateCandidate {
	var cands []dateCandidate
	for _, col := range p.index.Columns(fact) {
		switch NormalizeDataType(col.DataType) {
		case models.KindDate:
			cands = append(cands, dateCandidate{
				column:    col.Name,
				valueExpr: dax.ColumnRef(fact, col.Name),
			})
		case models.KindText:
			if strings.Contains(strings.ToLower(col.Name), "date") {
				cands = append(cands, dateCandidate{
					column:    col.Name,
					valueExpr: dax.TextToDateExpr(dax.ColumnRef(fact, col.Name)),
					parsed:    true,
				})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return dateRelevance(cands[i].column) > dateRelevance(cands[j].column)
	})
	return cands
}

// dateRelevance scores an anchor candidate by name. Submission and delivery
// dates beat completion dates beat creation dates; a bare "time" without
// "date" (elapsed/modified times) ranks below an unflavored name. First
// matching term wins for names carrying several.
func dateRelevance(column string) float64 {
	n := strings.ToLower(column)
	switch {
	case strings.Contains(n, "submitted"):
		return 6
	case strings.Contains(n, "sent"):
		return 5
	case strings.Contains(n, "closed"):
		return 4
	case strings.Contains(n, "created"), strings.Contains(n, "resolved"):
		return 3.5
	case strings.Contains(n, "calendar"):
		return 3
	case strings.Contains(n, "date"):
		return 2
	case strings.Contains(n, "time"):
		return 0.5
	default:
		return 1
	}
}

// profileFromRow decodes one anchor result row. A blank anchor means the
// strategy found nothing; the caller advances to the next one.
func profileFromRow(row tabular.Row, source models.AnchorSource, anchorColumn, referenceColumn string) *models.TimeAnchorProfile {
	if row == nil {
		return nil
	}
	anchor, ok := row.Time("anchor")
	if !ok {
		return nil
	}

	prof := &models.TimeAnchorProfile{
		Source:          source,
		AnchorColumn:    anchorColumn,
		ReferenceColumn: referenceColumn,
		Anchor:          &anchor,
		MinDate:         timeField(row, "min"),
		MaxDate:         timeField(row, "max"),
		NonBlankRows:    countField(row, "nonblank"),
		RowsLast7:       countField(row, "cnt7"),
		RowsLast30:      countField(row, "cnt30"),
		RowsLast90:      countField(row, "cnt90"),
	}
	return prof
}

func timeField(row tabular.Row, key string) *time.Time {
	if v, ok := row.Time(key); ok {
		return &v
	}
	return nil
}

func countField(row tabular.Row, key string) *int64 {
	if v, ok := row.Int64(key); ok {
		return &v
	}
	return nil
}
