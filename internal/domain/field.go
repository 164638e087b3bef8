package domain

import "strings"

// FieldID uniquely addresses a field as "<table>_<name>". Table calculations
// and additional metrics participate in the same namespace.
type FieldID string

// NewFieldID composes the canonical composite identifier for a field.
func NewFieldID(table, name string) FieldID {
	return FieldID(table + "_" + name)
}

// Field kinds.
const (
	FieldKindDimension = "dimension"
	FieldKindMetric    = "metric"
)

// Value types carried by fields and raw result cells.
const (
	TypeString    = "string"
	TypeNumber    = "number"
	TypeBoolean   = "boolean"
	TypeDate      = "date"
	TypeTimestamp = "timestamp"
)

// Metric aggregation kinds. The aggregation is a property of the metric
// definition, never chosen ad hoc by downstream consumers.
const (
	AggSum           = "sum"
	AggAverage       = "average"
	AggCount         = "count"
	AggCountDistinct = "count_distinct"
	AggMin           = "min"
	AggMax           = "max"
	AggMedian        = "median"
	AggPercentile    = "percentile"
)

// Compact notations for numeric display.
const (
	CompactThousands = "thousands"
	CompactMillions  = "millions"
	CompactBillions  = "billions"
	CompactTrillions = "trillions"
)

// NormalizeCompact maps the shorthand aliases K/M/B/T onto the canonical
// four compact notations. Unrecognized input is returned unchanged.
func NormalizeCompact(c string) string {
	switch c {
	case "K":
		return CompactThousands
	case "M":
		return CompactMillions
	case "B":
		return CompactBillions
	case "T":
		return CompactTrillions
	}
	return c
}

// Separator styles controlling grouping and decimal characters.
const (
	SeparatorCommaPeriod       = "commaPeriod"
	SeparatorSpacePeriod       = "spacePeriod"
	SeparatorPeriodComma       = "periodComma"
	SeparatorNoSeparatorPeriod = "noSeparatorPeriod"
)

// Named format presets. A preset overrides the generic numeric pipeline.
const (
	FormatPercent = "percent"
	FormatKm      = "km"
	FormatMi      = "mi"
	FormatUsd     = "usd"
	FormatGbp     = "gbp"
	FormatEur     = "eur"
	FormatID      = "id"
)

// FormatOptions is the closed set of display options a field may carry.
// Every recognized option and its effect is enumerated here; anything else
// in a schema file is a load-time error, not a silent no-op.
type FormatOptions struct {
	Format    string `yaml:"format,omitempty" json:"format,omitempty"`
	Round     *int   `yaml:"round,omitempty" json:"round,omitempty"`
	Compact   string `yaml:"compact,omitempty" json:"compact,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix    string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Currency  string `yaml:"currency,omitempty" json:"currency,omitempty"`
}

// Field identifies a dimension or metric resolved from an explore schema.
// Immutable once resolved.
type Field struct {
	Table       string         `yaml:"-" json:"table"`
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	FieldKind   string         `yaml:"-" json:"fieldKind"`
	SQL         string         `yaml:"sql" json:"sql"`
	Hidden      bool           `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Label       string         `yaml:"label,omitempty" json:"label,omitempty"`
	Aggregation string         `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
	Percentile  *float64       `yaml:"percentile,omitempty" json:"percentile,omitempty"`
	Format      *FormatOptions `yaml:"format,omitempty" json:"format,omitempty"`
}

// ID returns the composite identifier for the field.
func (f *Field) ID() FieldID { return NewFieldID(f.Table, f.Name) }

// DisplayLabel returns the label, falling back to a humanized name.
func (f *Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return humanize(f.Name)
}

// IsNumericType reports whether a value type participates in numeric
// formatting, aggregation, and conditional formatting.
func IsNumericType(valueType string) bool {
	return valueType == TypeNumber
}

// IsDateType reports whether a value type supports relative date operators.
func IsDateType(valueType string) bool {
	return valueType == TypeDate || valueType == TypeTimestamp
}

func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
