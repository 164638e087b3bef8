package filters

import (
	"errors"
	"testing"

	"prism/internal/catalog"
	"prism/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	e := &domain.Explore{
		Name:     "orders",
		SQLTable: "main.orders",
		Dimensions: []domain.Field{
			{Name: "status", Type: domain.TypeString, SQL: "status"},
			{Name: "quantity", Type: domain.TypeNumber, SQL: "quantity"},
			{Name: "created_at", Type: domain.TypeTimestamp, SQL: "created_at"},
		},
		Metrics: []domain.Field{
			{Name: "total_amount", Type: domain.TypeNumber, SQL: "amount", Aggregation: domain.AggSum},
		},
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("fixture explore: %v", err)
	}
	return catalog.New(e).ForQuery(nil, []domain.TableCalculation{
		{Name: "share", SQL: "${orders_total_amount} / 100"},
	})
}

func rule(field domain.FieldID, op string, values ...interface{}) domain.FilterRule {
	return domain.FilterRule{
		Target:   domain.FilterTarget{FieldRef: field},
		Operator: op,
		Values:   values,
	}
}

func group(nodes ...domain.FilterNode) *domain.FilterGroup {
	return &domain.FilterGroup{And: nodes}
}

func TestValidateNilGroup(t *testing.T) {
	if err := Validate(nil, testCatalog(t), ScopeAny); err != nil {
		t.Fatalf("nil group should be valid: %v", err)
	}
}

func TestValidateUnknownFieldReference(t *testing.T) {
	err := Validate(group(rule("orders_missing", domain.OpIsNull)), testCatalog(t), ScopeAny)
	var refErr *domain.InvalidFilterReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("error = %v (%T), want *InvalidFilterReferenceError", err, err)
	}
	if refErr.FieldID != "orders_missing" {
		t.Errorf("field id = %q", refErr.FieldID)
	}
}

func TestValidateTableCalculationNotFilterable(t *testing.T) {
	err := Validate(group(rule("share", domain.OpGreaterThan, 1)), testCatalog(t), ScopeAny)
	var refErr *domain.InvalidFilterReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("error = %v (%T), want *InvalidFilterReferenceError", err, err)
	}
}

func TestValidateScope(t *testing.T) {
	cat := testCatalog(t)

	// A metric in the dimension scope fails, and vice versa.
	err := Validate(group(rule("orders_total_amount", domain.OpGreaterThan, 1)), cat, ScopeDimensions)
	if err == nil {
		t.Error("metric reference should fail dimension scope")
	}
	err = Validate(group(rule("orders_status", domain.OpEquals, "completed")), cat, ScopeMetrics)
	if err == nil {
		t.Error("dimension reference should fail metric scope")
	}

	err = Validate(group(rule("orders_status", domain.OpEquals, "completed")), cat, ScopeDimensions)
	if err != nil {
		t.Errorf("dimension in dimension scope: %v", err)
	}
}

func TestValidateOperatorTypeRules(t *testing.T) {
	cat := testCatalog(t)

	cases := []struct {
		name    string
		node    domain.FilterRule
		wantErr bool
	}{
		{"isNull ignores values", rule("orders_status", domain.OpIsNull), false},
		{"equals on string", rule("orders_status", domain.OpEquals, "a", "b"), false},
		{"include on string", rule("orders_status", domain.OpInclude, "pend"), false},
		{"include on number", rule("orders_quantity", domain.OpInclude, "1"), true},
		{"lessThan on number", rule("orders_quantity", domain.OpLessThan, 10), false},
		{"lessThan on string", rule("orders_status", domain.OpLessThan, "x"), true},
		{"lessThan wrong arity", rule("orders_quantity", domain.OpLessThan, 1, 2), true},
		{"inBetween two values", rule("orders_quantity", domain.OpInBetween, 1, 10), false},
		{"inBetween one value", rule("orders_quantity", domain.OpInBetween, 1), true},
		{"greaterThan on timestamp", rule("orders_created_at", domain.OpGreaterThan, "2026-01-01"), false},
		{"unknown operator", rule("orders_status", "matches"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(group(tc.node), cat, ScopeAny)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRelativeDateOperators(t *testing.T) {
	cat := testCatalog(t)

	ok := rule("orders_created_at", domain.OpInThePast, 7)
	ok.Settings = &domain.FilterSettings{UnitOfTime: domain.UnitDays}
	if err := Validate(group(ok), cat, ScopeAny); err != nil {
		t.Fatalf("valid relative date rule: %v", err)
	}

	noUnit := rule("orders_created_at", domain.OpInThePast, 7)
	if err := Validate(group(noUnit), cat, ScopeAny); err == nil {
		t.Error("expected error for missing unit of time")
	}

	onString := rule("orders_status", domain.OpInThePast, 7)
	onString.Settings = &domain.FilterSettings{UnitOfTime: domain.UnitDays}
	if err := Validate(group(onString), cat, ScopeAny); err == nil {
		t.Error("expected error for relative date on string field")
	}

	// inTheCurrent takes no amount value.
	current := rule("orders_created_at", domain.OpInTheCurrent)
	current.Settings = &domain.FilterSettings{UnitOfTime: domain.UnitMonths}
	if err := Validate(group(current), cat, ScopeAny); err != nil {
		t.Fatalf("inTheCurrent without values: %v", err)
	}

	var opErr *domain.InvalidOperatorError
	badUnit := rule("orders_created_at", domain.OpInTheNext, 2)
	badUnit.Settings = &domain.FilterSettings{UnitOfTime: "fortnights"}
	err := Validate(group(badUnit), cat, ScopeAny)
	if !errors.As(err, &opErr) {
		t.Fatalf("error = %v (%T), want *InvalidOperatorError", err, err)
	}
}

func TestValidateNestedGroups(t *testing.T) {
	cat := testCatalog(t)

	nested := &domain.FilterGroup{
		And: []domain.FilterNode{
			&domain.FilterGroup{
				Or: []domain.FilterNode{
					rule("orders_status", domain.OpEquals, "completed"),
					rule("orders_missing", domain.OpIsNull),
				},
			},
		},
	}
	if err := Validate(nested, cat, ScopeAny); err == nil {
		t.Fatal("expected nested invalid reference to surface")
	}
}
