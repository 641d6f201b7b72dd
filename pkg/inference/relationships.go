package inference

import "github.com/wlvh/Process-SemanticModel/pkg/models"

// FilterStats is the aggregate returned by one filtering pass. It is a
// result, not component state, so concurrent snapshots never share counters.
type FilterStats struct {
	Total            int
	Business         int
	InactiveFiltered int
	AutoDateFiltered int
}

// IsBusinessRelationship reports whether a relationship participates in the
// business model: active, with neither endpoint an auto-generated calendar.
// A nil record is a caller error, not a filterable condition.
func IsBusinessRelationship(rel *models.Relationship) bool {
	if rel == nil {
		panic("inference: nil relationship record")
	}
	if !rel.IsActive {
		return false
	}
	return !IsAutoDateTable(rel.FromTable) && !IsAutoDateTable(rel.ToTable)
}

// FilterBusiness splits a snapshot's relationships into the business subset
// and counts of what was dropped. Inactive wins over auto-date when both
// apply, mirroring the predicate's evaluation order.
func FilterBusiness(rels []models.Relationship) ([]models.Relationship, FilterStats) {
	stats := FilterStats{Total: len(rels)}
	business := make([]models.Relationship, 0, len(rels))
	for i := range rels {
		rel := &rels[i]
		switch {
		case !rel.IsActive:
			stats.InactiveFiltered++
		case IsAutoDateTable(rel.FromTable) || IsAutoDateTable(rel.ToTable):
			stats.AutoDateFiltered++
		default:
			business = append(business, *rel)
		}
	}
	stats.Business = len(business)
	return business, stats
}

// Adjacency holds per-table business-relationship fan counts. Outgoing
// counts a table's foreign keys (fact-like), incoming counts references to
// it (dimension-like).
type Adjacency struct {
	Outgoing map[string]int
	Incoming map[string]int
}

// BuildAdjacency counts business-relationship ends per table.
func BuildAdjacency(business []models.Relationship) Adjacency {
	adj := Adjacency{
		Outgoing: make(map[string]int),
		Incoming: make(map[string]int),
	}
	for _, rel := range business {
		adj.Outgoing[rel.FromTable]++
		adj.Incoming[rel.ToTable]++
	}
	return adj
}
