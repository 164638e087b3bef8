package domain

// AdditionalMetric is an ad-hoc metric attached at query time. It is never
// persisted in the explore schema; it lives only for the query's lifetime.
type AdditionalMetric struct {
	Table             string         `json:"table"`
	Name              string         `json:"name"`
	Type              string         `json:"type"`
	Aggregation       string         `json:"aggregation"`
	SQL               string         `json:"sql"`
	BaseDimensionName string         `json:"baseDimensionName,omitempty"`
	Percentile        *float64       `json:"percentile,omitempty"`
	Label             string         `json:"label,omitempty"`
	Format            *FormatOptions `json:"format,omitempty"`
	Index             *int           `json:"index,omitempty"`
}

// ID returns the composite identifier for the additional metric.
func (m *AdditionalMetric) ID() FieldID { return NewFieldID(m.Table, m.Name) }

// TableCalculation is a named post-aggregation expression. Its SQL is
// evaluated by the execution layer; only its format is applied locally.
type TableCalculation struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName,omitempty"`
	SQL         string         `json:"sql"`
	Format      *FormatOptions `json:"format,omitempty"`
	Index       *int           `json:"index,omitempty"`
}

// FieldID returns the identifier a table calculation is addressed by. Table
// calculations are not table-scoped, so the name stands alone.
func (tc *TableCalculation) FieldID() FieldID { return FieldID(tc.Name) }

// SortField names a selected field and its direction. The compiler only
// validates sorts; row ordering is the execution layer's job.
type SortField struct {
	FieldID    FieldID `json:"fieldId"`
	Descending bool    `json:"descending"`
}

// QuerySelection is the raw UI selection state handed to the compiler.
type QuerySelection struct {
	Explore           string             `json:"explore"`
	Dimensions        []FieldID          `json:"dimensions"`
	Metrics           []FieldID          `json:"metrics"`
	Filters           Filters            `json:"filters"`
	Sorts             []SortField        `json:"sorts,omitempty"`
	Limit             int                `json:"limit,omitempty"`
	TableCalculations []TableCalculation `json:"tableCalculations,omitempty"`
	AdditionalMetrics []AdditionalMetric `json:"additionalMetrics,omitempty"`
}

// MetricQuery is the compiled, validated query description. Treated as
// immutable by every consumer; the compiler hands out a fresh value and
// nothing downstream mutates it.
type MetricQuery struct {
	Explore           string             `json:"explore"`
	Dimensions        []FieldID          `json:"dimensions"`
	Metrics           []FieldID          `json:"metrics"`
	Filters           Filters            `json:"filters"`
	Sorts             []SortField        `json:"sorts,omitempty"`
	Limit             int                `json:"limit"`
	TableCalculations []TableCalculation `json:"tableCalculations,omitempty"`
	AdditionalMetrics []AdditionalMetric `json:"additionalMetrics,omitempty"`
}
