package domain

import (
	"encoding/json"
	"testing"
)

func TestFilterGroupJSONRoundTrip(t *testing.T) {
	group := &FilterGroup{
		ID: "root",
		And: []FilterNode{
			FilterRule{
				ID:       "r1",
				Target:   FilterTarget{FieldRef: "orders_status"},
				Operator: OpEquals,
				Values:   []interface{}{"completed"},
			},
			&FilterGroup{
				ID: "nested",
				Or: []FilterNode{
					FilterRule{
						ID:       "r2",
						Target:   FilterTarget{FieldRef: "orders_total_amount"},
						Operator: OpGreaterThan,
						Values:   []interface{}{float64(100)},
					},
					FilterRule{
						ID:       "r3",
						Target:   FilterTarget{FieldRef: "orders_total_amount"},
						Operator: OpIsNull,
					},
				},
			},
		},
	}

	data, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded FilterGroup
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.ID != "root" {
		t.Errorf("id = %q, want root", decoded.ID)
	}
	if decoded.IsOr() {
		t.Error("root group should combine with AND")
	}
	if len(decoded.And) != 2 {
		t.Fatalf("children = %d, want 2", len(decoded.And))
	}

	rule, ok := decoded.And[0].(FilterRule)
	if !ok {
		t.Fatalf("first child is %T, want FilterRule", decoded.And[0])
	}
	if rule.Operator != OpEquals || rule.Target.FieldRef != "orders_status" {
		t.Errorf("unexpected rule: %+v", rule)
	}

	nested, ok := decoded.And[1].(*FilterGroup)
	if !ok {
		t.Fatalf("second child is %T, want *FilterGroup", decoded.And[1])
	}
	if !nested.IsOr() {
		t.Error("nested group should combine with OR")
	}
	if len(nested.Or) != 2 {
		t.Errorf("nested children = %d, want 2", len(nested.Or))
	}
}

func TestFilterGroupUnmarshalRejectsBothCombinators(t *testing.T) {
	var g FilterGroup
	err := json.Unmarshal([]byte(`{"id":"bad","and":[],"or":[]}`), &g)
	if err == nil {
		t.Fatal("expected error for group with both and/or")
	}
}

func TestFilterGroupMarshalEmitsCombinatorKey(t *testing.T) {
	or := &FilterGroup{ID: "g", Or: []FilterNode{}}
	data, err := json.Marshal(or)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if _, ok := raw["or"]; !ok {
		t.Error(`expected "or" key in marshaled group`)
	}
	if _, ok := raw["and"]; ok {
		t.Error(`unexpected "and" key in OR group`)
	}
}

func TestFilterGroupChildren(t *testing.T) {
	and := &FilterGroup{And: []FilterNode{FilterRule{ID: "a"}}}
	if and.IsOr() {
		t.Error("And group reported as OR")
	}
	if len(and.Children()) != 1 {
		t.Errorf("children = %d, want 1", len(and.Children()))
	}

	// An empty Or slice still marks the group as an OR group.
	or := &FilterGroup{Or: []FilterNode{}}
	if !or.IsOr() {
		t.Error("Or group not reported as OR")
	}
}
