package inference

import (
	"sort"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// BuildStarSchema maps every fact to its dimension edges over the business
// relationships. The result is a bipartite fact-to-dimension view: an edge
// whose target is not a recognized dimension is omitted, not an error. Facts
// without edges still appear with an empty list.
func BuildStarSchema(roles map[string]models.TableRole, business []models.Relationship) map[string][]models.DimensionEdge {
	star := make(map[string][]models.DimensionEdge)
	for table, role := range roles {
		if role == models.RoleFact {
			star[table] = []models.DimensionEdge{}
		}
	}

	for _, rel := range business {
		if roles[rel.FromTable] != models.RoleFact || roles[rel.ToTable] != models.RoleDimension {
			continue
		}
		star[rel.FromTable] = append(star[rel.FromTable], models.DimensionEdge{
			Dimension:       rel.ToTable,
			FactColumn:      rel.FromColumn,
			DimensionColumn: rel.ToColumn,
			CrossFilter:     rel.CrossFilter,
			FromCardinality: rel.FromCardinality,
			ToCardinality:   rel.ToCardinality,
		})
	}

	for fact := range star {
		edges := star[fact]
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Dimension != edges[j].Dimension {
				return edges[i].Dimension < edges[j].Dimension
			}
			return edges[i].FactColumn < edges[j].FactColumn
		})
	}

	return star
}
