package filters

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"prism/internal/domain"
)

// Evaluate applies the filter tree to a single row. The reference time is
// injected by the caller so relative date operators stay deterministic; the
// evaluator never reads the clock.
//
// A nil group is the identity filter: every row passes. An empty "and"
// group is vacuously true, an empty "or" group vacuously false. Rules that
// would fail Validate (missing values, missing settings) match no rows.
func Evaluate(group *domain.FilterGroup, row map[domain.FieldID]interface{}, now time.Time) bool {
	if group == nil {
		return true
	}
	return evalNode(group, row, now)
}

// FilterRows returns the rows matched by the filter tree, preserving order.
func FilterRows(group *domain.FilterGroup, rows []map[domain.FieldID]interface{}, now time.Time) []map[domain.FieldID]interface{} {
	out := make([]map[domain.FieldID]interface{}, 0, len(rows))
	for _, row := range rows {
		if Evaluate(group, row, now) {
			out = append(out, row)
		}
	}
	return out
}

func evalNode(node domain.FilterNode, row map[domain.FieldID]interface{}, now time.Time) bool {
	switch n := node.(type) {
	case *domain.FilterGroup:
		if n.IsOr() {
			for _, child := range n.Or {
				if evalNode(child, row, now) {
					return true
				}
			}
			return false
		}
		for _, child := range n.And {
			if !evalNode(child, row, now) {
				return false
			}
		}
		return true
	case domain.FilterRule:
		return evalRule(n, row, now)
	default:
		return false
	}
}

func evalRule(rule domain.FilterRule, row map[domain.FieldID]interface{}, now time.Time) bool {
	raw := row[rule.Target.FieldRef]

	switch rule.Operator {
	case domain.OpIsNull:
		return raw == nil
	case domain.OpNotNull:
		return raw != nil
	}

	if raw == nil {
		return false
	}

	switch rule.Operator {
	case domain.OpEquals:
		return len(rule.Values) == 0 || inSet(raw, rule.Values)
	case domain.OpNotEquals:
		return len(rule.Values) == 0 || !inSet(raw, rule.Values)
	case domain.OpInclude:
		return includesAny(raw, rule.Values)
	case domain.OpDoesNotInclude:
		return !includesAny(raw, rule.Values)
	case domain.OpLessThan:
		return len(rule.Values) >= 1 &&
			compareOrdered(raw, rule.Values[0], func(c int) bool { return c < 0 })
	case domain.OpLessThanOrEqual:
		return len(rule.Values) >= 1 &&
			compareOrdered(raw, rule.Values[0], func(c int) bool { return c <= 0 })
	case domain.OpGreaterThan:
		return len(rule.Values) >= 1 &&
			compareOrdered(raw, rule.Values[0], func(c int) bool { return c > 0 })
	case domain.OpGreaterThanOrEqual:
		return len(rule.Values) >= 1 &&
			compareOrdered(raw, rule.Values[0], func(c int) bool { return c >= 0 })
	case domain.OpInBetween:
		return len(rule.Values) >= 2 &&
			compareOrdered(raw, rule.Values[0], func(c int) bool { return c >= 0 }) &&
			compareOrdered(raw, rule.Values[1], func(c int) bool { return c <= 0 })
	case domain.OpInThePast, domain.OpInTheNext, domain.OpInTheCurrent:
		return evalRelativeDate(rule, raw, now)
	default:
		return false
	}
}

func inSet(raw interface{}, values []interface{}) bool {
	left := cast.ToString(raw)
	for _, v := range values {
		if left == cast.ToString(v) {
			return true
		}
	}
	return false
}

func includesAny(raw interface{}, values []interface{}) bool {
	haystack := strings.ToLower(cast.ToString(raw))
	for _, v := range values {
		if strings.Contains(haystack, strings.ToLower(cast.ToString(v))) {
			return true
		}
	}
	return false
}

// compareOrdered compares raw against the rule value as times when both
// coerce to times, numbers otherwise. pred receives -1, 0, or 1.
func compareOrdered(raw, value interface{}, pred func(int) bool) bool {
	if lt, errL := toTime(raw); errL == nil {
		if rt, errR := toTime(value); errR == nil {
			return pred(lt.Compare(rt))
		}
	}
	left, err := cast.ToFloat64E(raw)
	if err != nil {
		return false
	}
	right, err := cast.ToFloat64E(value)
	if err != nil {
		return false
	}
	switch {
	case left < right:
		return pred(-1)
	case left > right:
		return pred(1)
	default:
		return pred(0)
	}
}

func toTime(v interface{}) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	// Numbers are not timestamps here; only explicit time types and
	// date-shaped strings qualify.
	if s, ok := v.(string); ok {
		return cast.StringToDate(s)
	}
	return time.Time{}, domain.ErrValidation("not a time value")
}

func evalRelativeDate(rule domain.FilterRule, raw interface{}, now time.Time) bool {
	t, err := toTime(raw)
	if err != nil || rule.Settings == nil {
		return false
	}
	unit := rule.Settings.UnitOfTime

	if rule.Operator == domain.OpInTheCurrent {
		start := truncateToUnit(now, unit)
		end := addUnits(start, unit, 1)
		return !t.Before(start) && t.Before(end)
	}

	if len(rule.Values) == 0 {
		return false
	}
	amount, err := cast.ToIntE(rule.Values[0])
	if err != nil || amount < 0 {
		return false
	}

	completed := rule.Settings.Completed
	switch rule.Operator {
	case domain.OpInThePast:
		end := now
		if completed {
			end = truncateToUnit(now, unit)
		}
		start := addUnits(end, unit, -amount)
		return !t.Before(start) && t.Before(end)
	case domain.OpInTheNext:
		start := now
		if completed {
			start = addUnits(truncateToUnit(now, unit), unit, 1)
		}
		end := addUnits(start, unit, amount)
		return !t.Before(start) && t.Before(end)
	}
	return false
}

func truncateToUnit(t time.Time, unit string) time.Time {
	switch unit {
	case domain.UnitDays:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case domain.UnitWeeks:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		// ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.UnitMonths:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case domain.UnitYears:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	}
	return t
}

func addUnits(t time.Time, unit string, n int) time.Time {
	switch unit {
	case domain.UnitDays:
		return t.AddDate(0, 0, n)
	case domain.UnitWeeks:
		return t.AddDate(0, 0, 7*n)
	case domain.UnitMonths:
		return t.AddDate(0, n, 0)
	case domain.UnitYears:
		return t.AddDate(n, 0, 0)
	}
	return t
}
