// Package chart derives renderer-ready structures (pie series, conditional
// cell styles) from shaped query results.
package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"prism/internal/catalog"
	"prism/internal/domain"
	"prism/internal/service/format"
)

// Default series palette. Group colors are assigned round-robin in first-seen
// group order, so the same group keeps the same color across recomputation
// as long as group membership is unchanged.
var defaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

// BuildPieSeries groups shaped rows by the configured dimension, aggregates
// the selected metric per the metric's declared aggregation, and produces
// ordered chart-ready slices.
//
// Empty input yields a nil series, the explicit "no chart" sentinel. Callers
// must branch on nil versus a valid series rather than treating both alike.
func BuildPieSeries(rows []domain.ResultRow, cat *catalog.Catalog, cfg domain.PieChartConfig, fmtr *format.Formatter) ([]domain.PieSeriesDataPoint, error) {
	if len(rows) == 0 || cat == nil {
		return nil, nil
	}

	metricField, err := cat.Resolve(cfg.Metric)
	if err != nil {
		return nil, err
	}
	if _, err := cat.Resolve(cfg.GroupDimension); err != nil {
		return nil, err
	}

	aggregation := metricField.Aggregation()
	if aggregation == "" {
		aggregation = domain.AggSum
	}

	groups, order := groupRows(rows, cfg.GroupDimension)

	// Default colors keyed to first-seen group order.
	colorDefaults := make(map[string]string, len(order))
	for i, name := range order {
		colorDefaults[name] = defaultPalette[i%len(defaultPalette)]
	}

	sortGroups(order, cfg.SortedGroupLabels)

	points := make([]domain.PieSeriesDataPoint, 0, len(order))
	for _, name := range order {
		groupRows := groups[name]
		value, err := aggregate(groupRows, cfg.Metric, aggregation, metricField)
		if err != nil {
			return nil, err
		}

		formatted := fmtr.FormatField(value, metricField)

		color := colorDefaults[name]
		if override, ok := cfg.GroupColorOverrides[name]; ok {
			color = override
		}

		displayName := name
		if override, ok := cfg.GroupLabelOverrides[name]; ok {
			displayName = override
		}

		points = append(points, domain.PieSeriesDataPoint{
			ID:    name,
			Name:  displayName,
			Value: value,
			Color: color,
			Label: buildLabel(name, displayName, formatted.Formatted, cfg),
			Meta: domain.PieSeriesMeta{
				Value:           formatted,
				GroupDimensions: []domain.FieldID{cfg.GroupDimension},
				Rows:            groupRows,
			},
		})
	}
	return points, nil
}

// groupRows buckets rows by the dimension's raw value, tracking first-seen
// order.
func groupRows(rows []domain.ResultRow, dimension domain.FieldID) (map[string][]domain.ResultRow, []string) {
	groups := map[string][]domain.ResultRow{}
	order := []string{}
	for _, row := range rows {
		name := groupKey(row[dimension])
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], row)
	}
	return groups, order
}

func groupKey(v domain.ResultValue) string {
	if v.Raw == nil {
		return domain.NullDisplay
	}
	return cast.ToString(v.Raw)
}

// sortGroups orders group names per the externally supplied label order.
// Names absent from the supplied order keep their relative first-seen order
// after the ordered ones.
func sortGroups(order []string, sortedLabels []string) {
	if len(sortedLabels) == 0 {
		return
	}
	rank := make(map[string]int, len(sortedLabels))
	for i, label := range sortedLabels {
		rank[label] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, iOK := rank[order[i]]
		rj, jOK := rank[order[j]]
		if iOK && jOK {
			return ri < rj
		}
		return iOK && !jOK
	})
}

func aggregate(rows []domain.ResultRow, metric domain.FieldID, aggregation string, field catalog.ResolvedField) (float64, error) {
	values := make([]float64, 0, len(rows))
	distinct := map[string]bool{}
	for _, row := range rows {
		cell := row[metric]
		if cell.Raw == nil {
			continue
		}
		if aggregation == domain.AggCountDistinct {
			distinct[cast.ToString(cell.Raw)] = true
			continue
		}
		v, err := cast.ToFloat64E(cell.Raw)
		if err != nil {
			// Count tolerates non-numeric cells; everything else skips them.
			if aggregation == domain.AggCount {
				values = append(values, 0)
			}
			continue
		}
		values = append(values, v)
	}

	switch aggregation {
	case domain.AggCount:
		return float64(len(values)), nil
	case domain.AggCountDistinct:
		return float64(len(distinct)), nil
	}

	if len(values) == 0 {
		return 0, nil
	}

	switch aggregation {
	case domain.AggSum:
		return sum(values), nil
	case domain.AggAverage:
		return sum(values) / float64(len(values)), nil
	case domain.AggMin:
		out := values[0]
		for _, v := range values[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	case domain.AggMax:
		out := values[0]
		for _, v := range values[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	case domain.AggMedian:
		return quantile(values, 0.5), nil
	case domain.AggPercentile:
		p := 0.5
		if field.Kind == catalog.KindField && field.Field.Percentile != nil {
			p = *field.Field.Percentile / 100
		} else if field.Kind == catalog.KindAdditionalMetric && field.Metric.Percentile != nil {
			p = *field.Metric.Percentile / 100
		}
		return quantile(values, p), nil
	default:
		return 0, domain.ErrValidation("unsupported aggregation %q for pie series", aggregation)
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// quantile computes the p-quantile with linear interpolation between ranks.
func quantile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// buildLabel resolves the slice label from the value-label flags, honoring
// per-group overrides. With both value and percentage off, the label falls
// back to the group name alone.
func buildLabel(group, displayName, formattedValue string, cfg domain.PieChartConfig) domain.PieLabelConfig {
	valueLabel := cfg.ValueLabel
	if valueLabel == "" {
		valueLabel = domain.ValueLabelInside
	}
	showValue := cfg.ShowValue
	showPercentage := cfg.ShowPercentage

	if override, ok := cfg.GroupValueOptionOverrides[group]; ok {
		if override.ValueLabel != nil {
			valueLabel = *override.ValueLabel
		}
		if override.ShowValue != nil {
			showValue = *override.ShowValue
		}
		if override.ShowPercentage != nil {
			showPercentage = *override.ShowPercentage
		}
	}

	position := domain.ValueLabelInside
	if valueLabel == domain.ValueLabelOutside {
		position = domain.ValueLabelOutside
	}

	var text string
	switch {
	case valueLabel != domain.ValueLabelHidden && showValue && showPercentage:
		text = fmt.Sprintf("{d}%% - %s", formattedValue)
	case showValue:
		text = formattedValue
	case showPercentage:
		text = "{d}%"
	default:
		text = displayName
	}

	return domain.PieLabelConfig{
		Show:     valueLabel != domain.ValueLabelHidden,
		Position: position,
		Text:     text,
	}
}
