// Package format converts raw warehouse cell values into typed, formatted
// result values consumable by table and chart renderers.
package format

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"prism/internal/catalog"
	"prism/internal/domain"
)

// Formatter shapes raw cell values. It is stateless apart from the logger;
// formatting is a pure function of the value and the field's options.
type Formatter struct {
	logger *slog.Logger
}

// New creates a Formatter. A nil logger disables degradation warnings.
func New(logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Formatter{logger: logger}
}

// Format produces the display value for one cell. Null input yields the
// "-" sentinel with a nil raw value. A malformed value for the declared
// type never raises; it degrades to its plain string form so one bad cell
// cannot blank a result set.
func (f *Formatter) Format(raw interface{}, valueType string, opts *domain.FormatOptions) domain.ResultValue {
	if raw == nil {
		return domain.ResultValue{Raw: nil, Formatted: domain.NullDisplay}
	}

	switch valueType {
	case domain.TypeNumber:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			f.logger.Warn("malformed numeric cell", "value", raw, "error", err)
			return domain.ResultValue{Raw: raw, Formatted: cast.ToString(raw)}
		}
		return domain.ResultValue{Raw: raw, Formatted: formatNumber(v, opts)}
	case domain.TypeBoolean:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			f.logger.Warn("malformed boolean cell", "value", raw, "error", err)
			return domain.ResultValue{Raw: raw, Formatted: cast.ToString(raw)}
		}
		return domain.ResultValue{Raw: raw, Formatted: strconv.FormatBool(b)}
	case domain.TypeDate:
		if t, ok := toTime(raw); ok {
			return domain.ResultValue{Raw: raw, Formatted: t.Format("2006-01-02")}
		}
		return domain.ResultValue{Raw: raw, Formatted: cast.ToString(raw)}
	case domain.TypeTimestamp:
		if t, ok := toTime(raw); ok {
			return domain.ResultValue{Raw: raw, Formatted: t.Format("2006-01-02 15:04:05")}
		}
		return domain.ResultValue{Raw: raw, Formatted: cast.ToString(raw)}
	default:
		return domain.ResultValue{Raw: raw, Formatted: cast.ToString(raw)}
	}
}

// FormatField shapes a cell according to a resolved catalog entry.
func (f *Formatter) FormatField(raw interface{}, field catalog.ResolvedField) domain.ResultValue {
	return f.Format(raw, field.ValueType(), field.Format())
}

// ShapeRows converts raw result rows into renderer-ready rows, resolving
// each column through the catalog and falling back to the engine-reported
// field type for columns the catalog does not know.
func (f *Formatter) ShapeRows(result *domain.QueryResult, cat *catalog.Catalog) []domain.ResultRow {
	shaped := make([]domain.ResultRow, len(result.Rows))
	for i, raw := range result.Rows {
		row := make(domain.ResultRow, len(raw))
		for id, value := range raw {
			if resolved, err := cat.Resolve(id); err == nil {
				row[id] = f.FormatField(value, resolved)
				continue
			}
			row[id] = f.Format(value, result.FieldTypes[id], nil)
		}
		shaped[i] = row
	}
	return shaped
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := cast.StringToDate(t)
		return parsed, err == nil
	default:
		return time.Time{}, false
	}
}

var compactDivisors = map[string]struct {
	divisor float64
	suffix  string
}{
	domain.CompactThousands: {1e3, "K"},
	domain.CompactMillions:  {1e6, "M"},
	domain.CompactBillions:  {1e9, "B"},
	domain.CompactTrillions: {1e12, "T"},
}

// formatNumber runs the numeric display pipeline: round, compact notation,
// separator style, prefix/suffix, with currency codes and named presets
// superseding the generic output.
func formatNumber(v float64, opts *domain.FormatOptions) string {
	if opts == nil {
		return renderNumber(v, nil, "")
	}

	if opts.Format != "" {
		return formatPreset(v, opts)
	}
	if opts.Currency != "" {
		return formatCurrency(v, opts.Currency, opts)
	}

	compactSuffix := ""
	if c := domain.NormalizeCompact(opts.Compact); c != "" && v != 0 {
		spec, ok := compactDivisors[c]
		if !ok {
			return cast.ToString(v)
		}
		v /= spec.divisor
		compactSuffix = spec.suffix
	}

	out := renderNumber(v, opts.Round, opts.Separator) + compactSuffix
	return opts.Prefix + out + opts.Suffix
}

func formatPreset(v float64, opts *domain.FormatOptions) string {
	switch opts.Format {
	case domain.FormatPercent:
		return renderNumber(v*100, opts.Round, "") + "%"
	case domain.FormatKm:
		return renderNumber(v, opts.Round, opts.Separator) + " km"
	case domain.FormatMi:
		return renderNumber(v, opts.Round, opts.Separator) + " mi"
	case domain.FormatUsd:
		return formatCurrency(v, "USD", opts)
	case domain.FormatGbp:
		return formatCurrency(v, "GBP", opts)
	case domain.FormatEur:
		return formatCurrency(v, "EUR", opts)
	case domain.FormatID:
		return renderNumber(v, nil, domain.SeparatorNoSeparatorPeriod)
	default:
		return renderNumber(v, opts.Round, opts.Separator)
	}
}

var currencyPrinter = message.NewPrinter(language.English)

// formatCurrency renders a locale-aware currency amount. Compact notation
// still applies; the compact suffix trails the formatted amount.
func formatCurrency(v float64, code string, opts *domain.FormatOptions) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return cast.ToString(v)
	}

	compactSuffix := ""
	if c := domain.NormalizeCompact(opts.Compact); c != "" && v != 0 {
		if spec, ok := compactDivisors[c]; ok {
			v /= spec.divisor
			compactSuffix = spec.suffix
		}
	}

	decimals := 2
	if opts.Round != nil && *opts.Round >= 0 {
		decimals = *opts.Round
	}
	v = roundTo(v, decimals)

	out := currencyPrinter.Sprintf("%v", currency.Symbol(unit.Amount(v)))
	return out + compactSuffix
}

// renderNumber applies rounding and separator style. With no explicit round,
// values print at two decimals with trailing zeros trimmed, so 1.5 stays
// "1.5" and 1.0 collapses to "1".
func renderNumber(v float64, round *int, separator string) string {
	var digits string
	if round != nil && *round >= 0 {
		digits = strconv.FormatFloat(roundTo(v, *round), 'f', *round, 64)
	} else {
		digits = strconv.FormatFloat(roundTo(v, 2), 'f', 2, 64)
		digits = strings.TrimRight(digits, "0")
		digits = strings.TrimSuffix(digits, ".")
	}
	return applySeparator(digits, separator)
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// applySeparator rewrites the grouping and decimal characters of a plain
// "-1234.56" style number per the separator style. The empty style leaves
// the number ungrouped with a period decimal.
func applySeparator(digits, separator string) string {
	var group, decimal string
	switch separator {
	case domain.SeparatorCommaPeriod:
		group, decimal = ",", "."
	case domain.SeparatorSpacePeriod:
		group, decimal = " ", "."
	case domain.SeparatorPeriodComma:
		group, decimal = ".", ","
	case domain.SeparatorNoSeparatorPeriod, "":
		return digits
	default:
		return digits
	}

	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// String renders an arbitrary raw value the way degraded cells render.
func String(raw interface{}) string {
	if raw == nil {
		return domain.NullDisplay
	}
	return fmt.Sprintf("%v", raw)
}
