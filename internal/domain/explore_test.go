package domain

import (
	"errors"
	"testing"
)

func validExplore() Explore {
	return Explore{
		Name:     "orders",
		SQLTable: "main.orders",
		Dimensions: []Field{
			{Name: "status", Type: TypeString, SQL: "status"},
		},
		Metrics: []Field{
			{Name: "total_amount", Type: TypeNumber, SQL: "amount", Aggregation: AggSum},
		},
	}
}

func TestExploreValidateNormalizesFields(t *testing.T) {
	e := validExplore()
	if err := e.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	d := e.Dimensions[0]
	if d.Table != "orders" || d.FieldKind != FieldKindDimension {
		t.Errorf("dimension not normalized: table=%q kind=%q", d.Table, d.FieldKind)
	}
	m := e.Metrics[0]
	if m.Table != "orders" || m.FieldKind != FieldKindMetric {
		t.Errorf("metric not normalized: table=%q kind=%q", m.Table, m.FieldKind)
	}
	if d.ID() != "orders_status" {
		t.Errorf("dimension id = %q", d.ID())
	}
}

func TestExploreValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Explore)
	}{
		{"missing name", func(e *Explore) { e.Name = "" }},
		{"missing sql_table", func(e *Explore) { e.SQLTable = "" }},
		{"dimension bad type", func(e *Explore) { e.Dimensions[0].Type = "varchar" }},
		{"dimension empty sql", func(e *Explore) { e.Dimensions[0].SQL = "" }},
		{"dimension with aggregation", func(e *Explore) { e.Dimensions[0].Aggregation = AggSum }},
		{"metric bad aggregation", func(e *Explore) { e.Metrics[0].Aggregation = "total" }},
		{"metric missing aggregation", func(e *Explore) { e.Metrics[0].Aggregation = "" }},
		{"percentile without value", func(e *Explore) { e.Metrics[0].Aggregation = AggPercentile }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExplore()
			tc.mutate(&e)
			err := e.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestExploreValidatePercentile(t *testing.T) {
	e := validExplore()
	p := 95.0
	e.Metrics = append(e.Metrics, Field{
		Name: "p95_amount", Type: TypeNumber, SQL: "amount",
		Aggregation: AggPercentile, Percentile: &p,
	})
	if err := e.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
