// Package compile assembles raw query selections into validated metric queries.
package compile

import (
	"strings"

	"prism/internal/catalog"
	"prism/internal/domain"
	"prism/internal/service/filters"
)

// Options tunes compilation behavior per caller.
type Options struct {
	// DefaultLimit is applied when the selection carries no limit.
	DefaultLimit int
	// MaxLimit caps the row limit; zero means uncapped.
	MaxLimit int
}

// Compile validates the selection against the catalog and produces the
// immutable metric query description. Any validation failure aborts the
// whole compile with a single typed error; a partial query is never
// returned. Compilation is a pure transformation: equal inputs produce
// structurally equal queries.
func Compile(sel domain.QuerySelection, cat *catalog.Catalog, opts Options) (*domain.MetricQuery, error) {
	dimensions := dedupe(sel.Dimensions)
	metrics := dedupe(sel.Metrics)

	additional, err := validateAdditionalMetrics(sel.AdditionalMetrics, cat, len(metrics))
	if err != nil {
		return nil, err
	}

	queryCat := cat.ForQuery(additional, sel.TableCalculations)

	for _, id := range dimensions {
		resolved, err := queryCat.Resolve(id)
		if err != nil {
			return nil, err
		}
		if resolved.FieldKind() != domain.FieldKindDimension {
			return nil, domain.ErrValidation("field %q is not a dimension", id)
		}
	}
	for _, id := range metrics {
		resolved, err := queryCat.Resolve(id)
		if err != nil {
			return nil, err
		}
		if resolved.FieldKind() != domain.FieldKindMetric {
			return nil, domain.ErrValidation("field %q is not a metric", id)
		}
	}

	calcs, err := validateTableCalculations(sel.TableCalculations, dimensions, metrics, queryCat)
	if err != nil {
		return nil, err
	}

	if err := filters.Validate(sel.Filters.Dimensions, queryCat, filters.ScopeDimensions); err != nil {
		return nil, err
	}
	if err := filters.Validate(sel.Filters.Metrics, queryCat, filters.ScopeMetrics); err != nil {
		return nil, err
	}

	if err := validateSorts(sel.Sorts, dimensions, metrics, calcs); err != nil {
		return nil, err
	}

	limit := sel.Limit
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if limit <= 0 {
		return nil, domain.ErrValidation("limit must be a positive integer, got %d", limit)
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		limit = opts.MaxLimit
	}

	return &domain.MetricQuery{
		Explore:           sel.Explore,
		Dimensions:        dimensions,
		Metrics:           metrics,
		Filters:           sel.Filters,
		Sorts:             append([]domain.SortField(nil), sel.Sorts...),
		Limit:             limit,
		TableCalculations: calcs,
		AdditionalMetrics: additional,
	}, nil
}

// dedupe drops repeated identifiers keeping first occurrence. Order is
// significant: it determines default column order downstream.
func dedupe(ids []domain.FieldID) []domain.FieldID {
	seen := make(map[domain.FieldID]bool, len(ids))
	out := make([]domain.FieldID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func validateAdditionalMetrics(metrics []domain.AdditionalMetric, cat *catalog.Catalog, existingMetrics int) ([]domain.AdditionalMetric, error) {
	if len(metrics) == 0 {
		return nil, nil
	}
	out := make([]domain.AdditionalMetric, len(metrics))
	copy(out, metrics)
	for i := range out {
		m := &out[i]
		if strings.TrimSpace(m.SQL) == "" {
			return nil, domain.ErrValidation("additional metric %q has empty sql", m.Name)
		}
		if !domain.ValidAggregation(m.Aggregation) {
			return nil, domain.ErrValidation("additional metric %q has invalid aggregation %q", m.Name, m.Aggregation)
		}
		if m.BaseDimensionName != "" && !cat.HasDimension(m.Table, m.BaseDimensionName) {
			return nil, domain.ErrValidation("additional metric %q: base dimension %q not found on table %q", m.Name, m.BaseDimensionName, m.Table)
		}
		if m.Index == nil {
			idx := existingMetrics + i
			m.Index = &idx
		}
	}
	return out, nil
}

func validateTableCalculations(calcs []domain.TableCalculation, dimensions, metrics []domain.FieldID, cat *catalog.Catalog) ([]domain.TableCalculation, error) {
	if len(calcs) == 0 {
		return nil, nil
	}

	// Name uniqueness is case-insensitive across dimensions, metrics, and
	// the other table calculations.
	taken := map[string]bool{}
	for _, id := range dimensions {
		taken[strings.ToLower(string(id))] = true
	}
	for _, id := range metrics {
		taken[strings.ToLower(string(id))] = true
	}

	out := make([]domain.TableCalculation, len(calcs))
	copy(out, calcs)
	for i := range out {
		tc := &out[i]
		if tc.Name == "" {
			return nil, domain.ErrValidation("table calculation name is required")
		}
		if strings.TrimSpace(tc.SQL) == "" {
			return nil, domain.ErrValidation("table calculation %q has empty sql", tc.Name)
		}
		key := strings.ToLower(tc.Name)
		if taken[key] {
			return nil, &domain.DuplicateFieldNameError{Name: tc.Name}
		}
		taken[key] = true
	}
	return out, nil
}

func validateSorts(sorts []domain.SortField, dimensions, metrics []domain.FieldID, calcs []domain.TableCalculation) error {
	if len(sorts) == 0 {
		return nil
	}
	selected := map[domain.FieldID]bool{}
	for _, id := range dimensions {
		selected[id] = true
	}
	for _, id := range metrics {
		selected[id] = true
	}
	for i := range calcs {
		selected[calcs[i].FieldID()] = true
	}
	for _, s := range sorts {
		if !selected[s.FieldID] {
			return &domain.InvalidSortFieldError{FieldID: s.FieldID}
		}
	}
	return nil
}
