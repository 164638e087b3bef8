package format

import (
	"testing"

	"prism/internal/catalog"
	"prism/internal/domain"
)

func TestShapeRows(t *testing.T) {
	e := &domain.Explore{
		Name:     "orders",
		SQLTable: "main.orders",
		Dimensions: []domain.Field{
			{Name: "status", Type: domain.TypeString, SQL: "status"},
		},
		Metrics: []domain.Field{
			{
				Name: "total_amount", Type: domain.TypeNumber, SQL: "amount",
				Aggregation: domain.AggSum,
				Format:      &domain.FormatOptions{Compact: domain.CompactThousands},
			},
		},
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("fixture explore: %v", err)
	}
	cat := catalog.New(e)

	result := &domain.QueryResult{
		Rows: []map[domain.FieldID]interface{}{
			{"orders_status": "completed", "orders_total_amount": 2500.0, "extra_col": 7.0},
			{"orders_status": nil, "orders_total_amount": nil},
		},
		FieldTypes: map[domain.FieldID]string{
			"orders_status":       domain.TypeString,
			"orders_total_amount": domain.TypeNumber,
			"extra_col":           domain.TypeNumber,
		},
		RowCount: 2,
	}

	rows := New(nil).ShapeRows(result, cat)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}

	// Catalog-resolved metric applies its format options.
	if got := rows[0]["orders_total_amount"].Formatted; got != "2.5K" {
		t.Errorf("metric cell = %q, want 2.5K", got)
	}
	// Columns the catalog does not know fall back to engine-reported types.
	if got := rows[0]["extra_col"].Formatted; got != "7" {
		t.Errorf("extra cell = %q, want 7", got)
	}
	// Nulls shape to the sentinel in every column.
	if got := rows[1]["orders_status"].Formatted; got != domain.NullDisplay {
		t.Errorf("null dimension = %q", got)
	}
	if got := rows[1]["orders_total_amount"].Formatted; got != domain.NullDisplay {
		t.Errorf("null metric = %q", got)
	}
}
