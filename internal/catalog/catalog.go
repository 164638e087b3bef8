package catalog

import "prism/internal/domain"

// Kinds of resolved catalog entries.
const (
	KindField            = "field"
	KindAdditionalMetric = "additional_metric"
	KindTableCalculation = "table_calculation"
)

// ResolvedField is the uniform view of anything a FieldID can resolve to.
// Exactly one of Field, Metric, Calc is non-nil, matching Kind.
type ResolvedField struct {
	Kind   string
	Field  *domain.Field
	Metric *domain.AdditionalMetric
	Calc   *domain.TableCalculation
}

// ValueType returns the resolved entry's value type. Table calculations are
// treated as numeric: they derive from aggregated columns.
func (r ResolvedField) ValueType() string {
	switch r.Kind {
	case KindField:
		return r.Field.Type
	case KindAdditionalMetric:
		return r.Metric.Type
	default:
		return domain.TypeNumber
	}
}

// FieldKind returns dimension or metric. Additional metrics and table
// calculations both behave as metrics downstream.
func (r ResolvedField) FieldKind() string {
	if r.Kind == KindField {
		return r.Field.FieldKind
	}
	return domain.FieldKindMetric
}

// Aggregation returns the declared aggregation, if any.
func (r ResolvedField) Aggregation() string {
	switch r.Kind {
	case KindField:
		return r.Field.Aggregation
	case KindAdditionalMetric:
		return r.Metric.Aggregation
	default:
		return ""
	}
}

// Format returns the display options attached to the resolved entry.
func (r ResolvedField) Format() *domain.FormatOptions {
	switch r.Kind {
	case KindField:
		return r.Field.Format
	case KindAdditionalMetric:
		return r.Metric.Format
	default:
		return r.Calc.Format
	}
}

// Label returns the display label of the resolved entry.
func (r ResolvedField) Label() string {
	switch r.Kind {
	case KindField:
		return r.Field.DisplayLabel()
	case KindAdditionalMetric:
		if r.Metric.Label != "" {
			return r.Metric.Label
		}
		return r.Metric.Name
	default:
		if r.Calc.DisplayName != "" {
			return r.Calc.DisplayName
		}
		return r.Calc.Name
	}
}

// IsNumeric reports whether the resolved entry formats and aggregates as a number.
func (r ResolvedField) IsNumeric() bool {
	return domain.IsNumericType(r.ValueType())
}

// IsFilterable reports whether filter rules may target the resolved entry.
// Table calculations run after the base query, so they cannot be filtered.
func (r ResolvedField) IsFilterable() bool {
	return r.Kind != KindTableCalculation
}

// Catalog resolves field identifiers against one explore plus the additional
// metrics and table calculations of the active query. No mutable state;
// rebuilt whenever the explore or the query changes.
type Catalog struct {
	explore    *domain.Explore
	fields     map[domain.FieldID]*domain.Field
	additional map[domain.FieldID]*domain.AdditionalMetric
	calcs      map[domain.FieldID]*domain.TableCalculation
}

// New builds a Catalog over the explore's dimensions and metrics.
func New(explore *domain.Explore) *Catalog {
	c := &Catalog{
		explore:    explore,
		fields:     map[domain.FieldID]*domain.Field{},
		additional: map[domain.FieldID]*domain.AdditionalMetric{},
		calcs:      map[domain.FieldID]*domain.TableCalculation{},
	}
	for i := range explore.Dimensions {
		f := &explore.Dimensions[i]
		c.fields[f.ID()] = f
	}
	for i := range explore.Metrics {
		f := &explore.Metrics[i]
		c.fields[f.ID()] = f
	}
	return c
}

// ForQuery returns a new Catalog that additionally resolves the query's
// additional metrics and table calculations. The receiver is not modified.
func (c *Catalog) ForQuery(metrics []domain.AdditionalMetric, calcs []domain.TableCalculation) *Catalog {
	next := New(c.explore)
	for i := range metrics {
		m := &metrics[i]
		next.additional[m.ID()] = m
	}
	for i := range calcs {
		tc := &calcs[i]
		next.calcs[tc.FieldID()] = tc
	}
	return next
}

// Explore returns the explore the catalog was built from.
func (c *Catalog) Explore() *domain.Explore { return c.explore }

// Resolve looks up a field identifier in the explore schema, the active
// additional metrics, then the table calculations.
func (c *Catalog) Resolve(id domain.FieldID) (ResolvedField, error) {
	if f, ok := c.fields[id]; ok {
		return ResolvedField{Kind: KindField, Field: f}, nil
	}
	if m, ok := c.additional[id]; ok {
		return ResolvedField{Kind: KindAdditionalMetric, Metric: m}, nil
	}
	if tc, ok := c.calcs[id]; ok {
		return ResolvedField{Kind: KindTableCalculation, Calc: tc}, nil
	}
	return ResolvedField{}, &domain.UnknownFieldError{FieldID: id}
}

// HasDimension reports whether the explore declares the named dimension on
// the given table.
func (c *Catalog) HasDimension(table, name string) bool {
	f, ok := c.fields[domain.NewFieldID(table, name)]
	return ok && f.FieldKind == domain.FieldKindDimension
}
