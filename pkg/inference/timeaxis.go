package inference

import (
	"sort"
	"strings"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// preferredDateColumns are tried by exact name before falling back to the
// first date-typed column.
var preferredDateColumns = []string{"CalendarDate", "Date", "DateValue"}

// preferredDateKeys are tried by exact name before the endswith-DateKey scan.
var preferredDateKeys = []string{"DateKey", "Date Id", "DateID"}

// TimeAxisResolver finds how facts reach a calendar: the model-wide date
// dimension, and per fact the relationship (if any) that links it there.
type TimeAxisResolver struct {
	index    *MetadataIndex
	roles    map[string]models.TableRole
	business []models.Relationship
}

// NewTimeAxisResolver builds a resolver over one classified snapshot.
func NewTimeAxisResolver(index *MetadataIndex, roles map[string]models.TableRole, business []models.Relationship) *TimeAxisResolver {
	return &TimeAxisResolver{index: index, roles: roles, business: business}
}

// ModelDateAxis picks the model-wide date dimension, its surrogate key and
// its display date column. Returns nil when no table is calendar-flavored.
func (r *TimeAxisResolver) ModelDateAxis() *models.DateAxis {
	candidates := make([]string, 0)
	for _, t := range r.index.BusinessTables() {
		candidates = append(candidates, t.Name)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return dateTableScore(candidates[i]) < dateTableScore(candidates[j])
	})

	table := ""
	for _, name := range candidates {
		n := strings.ToLower(name)
		if strings.Contains(n, "dim") && (strings.Contains(n, "date") || strings.Contains(n, "calendar")) {
			table = name
			break
		}
	}
	if table == "" {
		for _, name := range candidates {
			n := strings.ToLower(name)
			if strings.Contains(n, "date") || strings.Contains(n, "calendar") {
				table = name
				break
			}
		}
	}
	if table == "" {
		return nil
	}

	return &models.DateAxis{
		Table:      table,
		KeyColumn:  r.dimensionKeyColumn(table),
		DateColumn: r.dimensionDateColumn(table),
	}
}

// dateTableScore orders date-dimension candidates, lower is better. Ties
// keep snapshot order.
func dateTableScore(table string) int {
	n := strings.ToLower(table)
	switch {
	case strings.Contains(n, "dimdate"):
		return 0
	case strings.HasSuffix(n, "dimdate"):
		return 1
	case strings.Contains(n, "calendar"):
		return 2
	case strings.HasSuffix(n, "date"):
		return 3
	case strings.Contains(n, "date"):
		return 4
	default:
		return 9
	}
}

// FactTimeAxis resolves one fact's route to the calendar. Relationship-based
// resolution prefers the model axis table, then any dimension named like an
// exact date dimension, then any dimension with a looser calendar keyword.
// Without a qualifying relationship the fact's own date columns supply a
// local fallback.
func (r *TimeAxisResolver) FactTimeAxis(fact string, modelAxis *models.DateAxis) models.FactTimeAxis {
	if fact == "" {
		panic("inference: empty fact table name")
	}

	if rel := r.pickDateRelationship(fact, modelAxis); rel != nil {
		dimKey := rel.ToColumn
		if dimKey == "" {
			dimKey = "DateKey"
		}
		return models.FactTimeAxis{
			HasDateAxis:    true,
			FactKeyColumn:  rel.FromColumn,
			DimensionTable: rel.ToTable,
			DimensionKey:   dimKey,
			DateColumn:     r.dimensionDateColumn(rel.ToTable),
		}
	}

	return models.FactTimeAxis{
		HasDateAxis:     false,
		LocalDateColumn: r.localDateColumn(fact),
	}
}

func (r *TimeAxisResolver) pickDateRelationship(fact string, modelAxis *models.DateAxis) *models.Relationship {
	if modelAxis != nil {
		for i := range r.business {
			rel := &r.business[i]
			if rel.FromTable == fact && rel.ToTable == modelAxis.Table && rel.FromColumn != "" {
				return rel
			}
		}
	}
	for i := range r.business {
		rel := &r.business[i]
		if rel.FromTable == fact && rel.FromColumn != "" &&
			r.roles[rel.ToTable] == models.RoleDimension &&
			strings.Contains(strings.ToLower(rel.ToTable), "dimdate") {
			return rel
		}
	}
	for i := range r.business {
		rel := &r.business[i]
		if rel.FromTable != fact || rel.FromColumn == "" || r.roles[rel.ToTable] != models.RoleDimension {
			continue
		}
		n := strings.ToLower(rel.ToTable)
		if strings.Contains(n, "calendar") || strings.Contains(n, "date") {
			return rel
		}
	}
	return nil
}

// dimensionDateColumn picks a dimension's display date column.
func (r *TimeAxisResolver) dimensionDateColumn(dim string) string {
	present := make(map[string]bool)
	for _, c := range r.index.Columns(dim) {
		present[c.Name] = true
	}
	for _, prefer := range preferredDateColumns {
		if present[prefer] {
			return prefer
		}
	}
	if dateCols := r.index.DateColumns(dim); len(dateCols) > 0 {
		return dateCols[0].Name
	}
	return ""
}

// dimensionKeyColumn picks a dimension's join key column.
func (r *TimeAxisResolver) dimensionKeyColumn(dim string) string {
	cols := r.index.Columns(dim)
	present := make(map[string]bool)
	for _, c := range cols {
		present[c.Name] = true
	}
	for _, prefer := range preferredDateKeys {
		if present[prefer] {
			return prefer
		}
	}
	for _, c := range cols {
		if strings.HasSuffix(strings.ToLower(c.Name), "datekey") {
			return c.Name
		}
	}
	if len(cols) > 0 {
		return cols[0].Name
	}
	return ""
}

// localDateColumn picks a fact's own best date column when no relationship
// reaches the calendar: completion-flavored names first, else the first date
// column.
func (r *TimeAxisResolver) localDateColumn(fact string) string {
	dateCols := r.index.DateColumns(fact)
	for _, c := range dateCols {
		if strings.Contains(strings.ToLower(c.Name), "closed") {
			return c.Name
		}
	}
	if len(dateCols) > 0 {
		return dateCols[0].Name
	}
	return ""
}
