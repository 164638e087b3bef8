package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"prism/internal/catalog"
	"prism/internal/domain"
)

// CellStyle is the resolved display override for one table cell.
type CellStyle struct {
	Color string `json:"color"`
}

// ResolveCellStyle evaluates the ordered formatting configs against a cell.
// The first config (by list order) whose target matches and whose condition
// or range is satisfied wins; later matches are never applied or blended.
// Returns false when no config matches.
func ResolveCellStyle(configs []domain.ConditionalFormattingConfig, fieldID domain.FieldID, raw interface{}, cat *catalog.Catalog) (CellStyle, bool) {
	resolved, err := cat.Resolve(fieldID)
	if err != nil || !resolved.IsNumeric() || !resolved.IsFilterable() {
		return CellStyle{}, false
	}

	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return CellStyle{}, false
	}

	for _, cfg := range configs {
		if cfg.Target != nil && *cfg.Target != fieldID {
			continue
		}
		if cfg.ColorRange != nil {
			return CellStyle{Color: scaleColor(value, *cfg.ColorRange)}, true
		}
		if matchesAllRules(value, cfg.Rules) {
			return CellStyle{Color: cfg.Color}, true
		}
	}
	return CellStyle{}, false
}

// StyleRows computes the per-cell style overlay for a shaped result set.
// The outer slice is row-aligned; each map holds only the styled cells.
func StyleRows(configs []domain.ConditionalFormattingConfig, rows []domain.ResultRow, cat *catalog.Catalog) []map[domain.FieldID]CellStyle {
	styles := make([]map[domain.FieldID]CellStyle, len(rows))
	for i, row := range rows {
		cellStyles := map[domain.FieldID]CellStyle{}
		for id, cell := range row {
			if style, ok := ResolveCellStyle(configs, id, cell.Raw, cat); ok {
				cellStyles[id] = style
			}
		}
		styles[i] = cellStyles
	}
	return styles
}

func matchesAllRules(value float64, rules []domain.ConditionalFormattingRule) bool {
	if len(rules) == 0 {
		return false
	}
	for _, rule := range rules {
		if !matchesRule(value, rule) {
			return false
		}
	}
	return true
}

func matchesRule(value float64, rule domain.ConditionalFormattingRule) bool {
	operand := func(i int) (float64, bool) {
		if i >= len(rule.Values) {
			return 0, false
		}
		v, err := cast.ToFloat64E(rule.Values[i])
		return v, err == nil
	}

	switch rule.Operator {
	case domain.OpEquals:
		for _, rv := range rule.Values {
			if v, err := cast.ToFloat64E(rv); err == nil && v == value {
				return true
			}
		}
		return false
	case domain.OpNotEquals:
		for _, rv := range rule.Values {
			if v, err := cast.ToFloat64E(rv); err == nil && v == value {
				return false
			}
		}
		return true
	case domain.OpLessThan:
		v, ok := operand(0)
		return ok && value < v
	case domain.OpLessThanOrEqual:
		v, ok := operand(0)
		return ok && value <= v
	case domain.OpGreaterThan:
		v, ok := operand(0)
		return ok && value > v
	case domain.OpGreaterThanOrEqual:
		v, ok := operand(0)
		return ok && value >= v
	case domain.OpInBetween:
		lo, okLo := operand(0)
		hi, okHi := operand(1)
		return okLo && okHi && value >= lo && value <= hi
	default:
		return false
	}
}

// scaleColor linearly interpolates between the range's endpoint colors on
// (value-min)/(max-min) clamped to [0,1]; out-of-range values take the
// nearest endpoint color rather than extrapolating.
func scaleColor(value float64, r domain.ConditionalFormattingColorRange) string {
	t := 0.0
	if r.Max != r.Min {
		t = (value - r.Min) / (r.Max - r.Min)
	}
	t = math.Max(0, math.Min(1, t))
	return lerpHexColor(r.StartColor, r.EndColor, t)
}

func lerpHexColor(start, end string, t float64) string {
	sr, sg, sb, okS := parseHexColor(start)
	er, eg, eb, okE := parseHexColor(end)
	if !okS || !okE {
		if t < 0.5 {
			return start
		}
		return end
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(sr, er), lerp(sg, eg), lerp(sb, eb))
}

func parseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
