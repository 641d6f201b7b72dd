package inference

import (
	"reflect"
	"testing"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

func TestBuildStarSchema(t *testing.T) {
	roles := map[string]models.TableRole{
		"FactSales":   models.RoleFact,
		"FactReturns": models.RoleFact,
		"DimDate":     models.RoleDimension,
		"DimQueue":    models.RoleDimension,
		"Bridge":      models.RoleBridge,
		"Notes":       models.RoleOther,
	}
	business := []models.Relationship{
		{FromTable: "FactSales", FromColumn: "QueueKey", ToTable: "DimQueue", ToColumn: "QueueKey", CrossFilter: "OneDirection"},
		{FromTable: "FactSales", FromColumn: "OrderDateKey", ToTable: "DimDate", ToColumn: "DateKey"},
		{FromTable: "FactSales", FromColumn: "ShipDateKey", ToTable: "DimDate", ToColumn: "DateKey"},
		// Non-dimension targets never become star edges.
		{FromTable: "FactSales", FromColumn: "BridgeKey", ToTable: "Bridge", ToColumn: "Key"},
		{FromTable: "FactSales", FromColumn: "NoteKey", ToTable: "Notes", ToColumn: "Key"},
		{FromTable: "Bridge", FromColumn: "QueueKey", ToTable: "DimQueue", ToColumn: "QueueKey"},
	}

	star := BuildStarSchema(roles, business)

	if len(star) != 2 {
		t.Fatalf("star has %d facts, want 2", len(star))
	}
	edges, ok := star["FactReturns"]
	if !ok {
		t.Fatal("fact without dimension edges must still be present")
	}
	if len(edges) != 0 {
		t.Errorf("FactReturns edges = %v, want empty", edges)
	}

	want := []models.DimensionEdge{
		{Dimension: "DimDate", FactColumn: "OrderDateKey", DimensionColumn: "DateKey"},
		{Dimension: "DimDate", FactColumn: "ShipDateKey", DimensionColumn: "DateKey"},
		{Dimension: "DimQueue", FactColumn: "QueueKey", DimensionColumn: "QueueKey", CrossFilter: "OneDirection"},
	}
	if !reflect.DeepEqual(star["FactSales"], want) {
		t.Errorf("FactSales edges = %+v, want %+v", star["FactSales"], want)
	}
}

func TestBuildStarSchemaEmptyInputs(t *testing.T) {
	star := BuildStarSchema(nil, nil)
	if len(star) != 0 {
		t.Errorf("expected empty star schema, got %v", star)
	}
}
