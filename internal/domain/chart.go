package domain

// Value label placement for pie slices.
const (
	ValueLabelHidden  = "hidden"
	ValueLabelInside  = "inside"
	ValueLabelOutside = "outside"
)

// PieValueOptions overrides label behavior for a single group.
type PieValueOptions struct {
	ValueLabel     *string `json:"valueLabel,omitempty"`
	ShowValue      *bool   `json:"showValue,omitempty"`
	ShowPercentage *bool   `json:"showPercentage,omitempty"`
}

// PieChartConfig selects the grouping dimension and metric for a pie chart
// and carries the per-group display overrides. SortedGroupLabels is an
// explicit, externally supplied order; the aggregator consumes it and never
// computes its own.
type PieChartConfig struct {
	GroupDimension            FieldID                    `json:"groupDimension"`
	Metric                    FieldID                    `json:"metric"`
	IsDonut                   bool                       `json:"isDonut,omitempty"`
	ValueLabel                string                     `json:"valueLabel,omitempty"`
	ShowValue                 bool                       `json:"showValue,omitempty"`
	ShowPercentage            bool                       `json:"showPercentage,omitempty"`
	ShowLegend                bool                       `json:"showLegend,omitempty"`
	GroupLabelOverrides       map[string]string          `json:"groupLabelOverrides,omitempty"`
	GroupColorOverrides       map[string]string          `json:"groupColorOverrides,omitempty"`
	GroupValueOptionOverrides map[string]PieValueOptions `json:"groupValueOptionOverrides,omitempty"`
	SortedGroupLabels         []string                   `json:"sortedGroupLabels,omitempty"`
}

// PieSeriesMeta carries the aggregated value and provenance of a slice.
type PieSeriesMeta struct {
	Value           ResultValue `json:"value"`
	GroupDimensions []FieldID   `json:"groupDimensions"`
	Rows            []ResultRow `json:"rows"`
}

// PieLabelConfig is the resolved label rendering for one slice.
type PieLabelConfig struct {
	Show     bool   `json:"show"`
	Position string `json:"position"`
	Text     string `json:"text"`
}

// PieSeriesDataPoint is one chart-ready slice. Rebuilt on every config
// change; owned by the rendering session.
type PieSeriesDataPoint struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Value float64        `json:"value"`
	Color string         `json:"color"`
	Label PieLabelConfig `json:"label"`
	Meta  PieSeriesMeta  `json:"meta"`
}

// ConditionalFormattingRule is a filter-style numeric condition inside a
// single-color formatting config.
type ConditionalFormattingRule struct {
	Operator string        `json:"operator"`
	Values   []interface{} `json:"values,omitempty"`
}

// ConditionalFormattingColorRange interpolates between two colors over a
// numeric range. Out-of-range values clamp to the endpoint colors.
type ConditionalFormattingColorRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	StartColor string  `json:"startColor"`
	EndColor   string  `json:"endColor"`
}

// ConditionalFormattingConfig is one entry of the ordered rule list applied
// to table cells. A nil Target applies the config to every numeric field.
// Exactly one of Color+Rules or ColorRange is set.
type ConditionalFormattingConfig struct {
	Target     *FieldID                         `json:"target,omitempty"`
	Color      string                           `json:"color,omitempty"`
	Rules      []ConditionalFormattingRule      `json:"rules,omitempty"`
	ColorRange *ConditionalFormattingColorRange `json:"colorRange,omitempty"`
}
