package domain

import "unicode/utf8"

// MaxExploreNameLength bounds explore and field names.
const MaxExploreNameLength = 255

// Explore is the schema describing one queryable table: its warehouse
// relation plus the dimensions and metrics it exposes.
type Explore struct {
	Name       string  `yaml:"name" json:"name"`
	Label      string  `yaml:"label,omitempty" json:"label,omitempty"`
	SQLTable   string  `yaml:"sql_table" json:"sqlTable"`
	Dimensions []Field `yaml:"dimensions" json:"dimensions"`
	Metrics    []Field `yaml:"metrics" json:"metrics"`
}

var validAggregations = map[string]bool{
	AggSum: true, AggAverage: true, AggCount: true, AggCountDistinct: true,
	AggMin: true, AggMax: true, AggMedian: true, AggPercentile: true,
}

var validValueTypes = map[string]bool{
	TypeString: true, TypeNumber: true, TypeBoolean: true, TypeDate: true, TypeTimestamp: true,
}

// ValidAggregation reports whether agg names a known aggregation kind.
func ValidAggregation(agg string) bool { return validAggregations[agg] }

// Validate checks the explore schema is well-formed and normalizes field
// table scoping and kinds.
func (e *Explore) Validate() error {
	if e.Name == "" {
		return ErrValidation("explore name is required")
	}
	if utf8.RuneCountInString(e.Name) > MaxExploreNameLength {
		return ErrValidation("explore name must be <= %d characters", MaxExploreNameLength)
	}
	if e.SQLTable == "" {
		return ErrValidation("explore %q: sql_table is required", e.Name)
	}
	for i := range e.Dimensions {
		d := &e.Dimensions[i]
		d.Table = e.Name
		d.FieldKind = FieldKindDimension
		if d.Name == "" {
			return ErrValidation("explore %q: dimension name is required", e.Name)
		}
		if !validValueTypes[d.Type] {
			return ErrValidation("explore %q: dimension %q has invalid type %q", e.Name, d.Name, d.Type)
		}
		if d.SQL == "" {
			return ErrValidation("explore %q: dimension %q has empty sql", e.Name, d.Name)
		}
		if d.Aggregation != "" {
			return ErrValidation("explore %q: dimension %q must not declare an aggregation", e.Name, d.Name)
		}
	}
	for i := range e.Metrics {
		m := &e.Metrics[i]
		m.Table = e.Name
		m.FieldKind = FieldKindMetric
		if m.Name == "" {
			return ErrValidation("explore %q: metric name is required", e.Name)
		}
		if !validValueTypes[m.Type] {
			return ErrValidation("explore %q: metric %q has invalid type %q", e.Name, m.Name, m.Type)
		}
		if m.SQL == "" {
			return ErrValidation("explore %q: metric %q has empty sql", e.Name, m.Name)
		}
		if !validAggregations[m.Aggregation] {
			return ErrValidation("explore %q: metric %q has invalid aggregation %q", e.Name, m.Name, m.Aggregation)
		}
		if m.Aggregation == AggPercentile && m.Percentile == nil {
			return ErrValidation("explore %q: metric %q requires a percentile", e.Name, m.Name)
		}
	}
	return nil
}
