package domain

import (
	"encoding/json"
	"fmt"
)

// Conditional operators understood by filter rules.
const (
	OpIsNull             = "isNull"
	OpNotNull            = "notNull"
	OpEquals             = "equals"
	OpNotEquals          = "notEquals"
	OpInclude            = "include"
	OpDoesNotInclude     = "doesNotInclude"
	OpLessThan           = "lessThan"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpGreaterThan        = "greaterThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpInBetween          = "inBetween"
	OpInThePast          = "inThePast"
	OpInTheNext          = "inTheNext"
	OpInTheCurrent       = "inTheCurrent"
)

// Units of time accepted by the relative date operators.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
	UnitYears  = "years"
)

// FilterTarget names the field a rule applies to.
type FilterTarget struct {
	FieldRef FieldID `json:"fieldRef"`
}

// FilterSettings carries operator-specific options, currently only the unit
// of time for the relative date operators.
type FilterSettings struct {
	UnitOfTime string `json:"unitOfTime,omitempty"`
	Completed  bool   `json:"completed,omitempty"`
}

// FilterRule is a leaf predicate over a single field.
type FilterRule struct {
	ID       string          `json:"id"`
	Target   FilterTarget    `json:"target"`
	Operator string          `json:"operator"`
	Values   []interface{}   `json:"values,omitempty"`
	Settings *FilterSettings `json:"settings,omitempty"`
}

// FilterGroup combines child nodes with a single combinator. Exactly one of
// And/Or is set; children may mix rules and nested groups. An empty And
// group is vacuously true, an empty Or group vacuously false.
type FilterGroup struct {
	ID  string
	And []FilterNode
	Or  []FilterNode
}

// FilterNode is the tagged variant over rules and groups. Evaluation and
// validation recurse structurally over this interface.
type FilterNode interface {
	filterNode()
}

func (FilterRule) filterNode()   {}
func (*FilterGroup) filterNode() {}

// IsOr reports whether the group combines its children with OR.
func (g *FilterGroup) IsOr() bool { return g.Or != nil }

// Children returns the group's child nodes regardless of combinator.
func (g *FilterGroup) Children() []FilterNode {
	if g.IsOr() {
		return g.Or
	}
	return g.And
}

// Filters splits a query's filter trees by the kind of field they may
// reference: dimension filters run before aggregation, metric filters after.
type Filters struct {
	Dimensions *FilterGroup `json:"dimensions,omitempty"`
	Metrics    *FilterGroup `json:"metrics,omitempty"`
}

type filterGroupJSON struct {
	ID  string            `json:"id"`
	And []json.RawMessage `json:"and,omitempty"`
	Or  []json.RawMessage `json:"or,omitempty"`
}

// MarshalJSON renders the group with its combinator key ("and" or "or").
func (g *FilterGroup) MarshalJSON() ([]byte, error) {
	out := filterGroupJSON{ID: g.ID}
	encode := func(nodes []FilterNode) ([]json.RawMessage, error) {
		raw := make([]json.RawMessage, 0, len(nodes))
		for _, n := range nodes {
			b, err := json.Marshal(n)
			if err != nil {
				return nil, err
			}
			raw = append(raw, b)
		}
		return raw, nil
	}
	var err error
	if g.IsOr() {
		out.Or, err = encode(g.Or)
	} else {
		out.And, err = encode(g.And)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a group, telling rule children apart from nested
// groups by the presence of an "and"/"or" key.
func (g *FilterGroup) UnmarshalJSON(data []byte) error {
	var raw filterGroupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.And != nil && raw.Or != nil {
		return fmt.Errorf("filter group %q sets both \"and\" and \"or\"", raw.ID)
	}
	g.ID = raw.ID
	g.And = nil
	g.Or = nil
	decode := func(members []json.RawMessage) ([]FilterNode, error) {
		nodes := make([]FilterNode, 0, len(members))
		for _, m := range members {
			node, err := decodeFilterNode(m)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	}
	var err error
	if raw.Or != nil {
		g.Or, err = decode(raw.Or)
	} else {
		g.And, err = decode(raw.And)
	}
	return err
}

func decodeFilterNode(data []byte) (FilterNode, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["and"]; ok {
		group := &FilterGroup{}
		return group, json.Unmarshal(data, group)
	}
	if _, ok := probe["or"]; ok {
		group := &FilterGroup{}
		return group, json.Unmarshal(data, group)
	}
	var rule FilterRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, err
	}
	return rule, nil
}
