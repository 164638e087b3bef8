// Package engine executes compiled metric queries against an embedded
// DuckDB warehouse.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"prism/internal/catalog"
	"prism/internal/domain"
)

// BuildSQL assembles the single flat SELECT for a compiled metric query:
// dimensions and metric aggregates in the select list, dimension filters in
// WHERE, GROUP BY over the dimensions, metric filters in HAVING, validated
// sorts in ORDER BY, then LIMIT. Table calculations wrap the base query in
// a CTE and are projected on top.
func BuildSQL(q *domain.MetricQuery, explore *domain.Explore) (string, error) {
	cat := catalog.New(explore).ForQuery(q.AdditionalMetrics, q.TableCalculations)

	selectParts := make([]string, 0, len(q.Dimensions)+len(q.Metrics))
	groupByParts := make([]string, 0, len(q.Dimensions))

	for _, id := range q.Dimensions {
		resolved, err := cat.Resolve(id)
		if err != nil {
			return "", err
		}
		expr := resolved.Field.SQL
		selectParts = append(selectParts, fmt.Sprintf("%s AS %s", expr, quoteIdent(string(id))))
		groupByParts = append(groupByParts, expr)
	}

	for _, id := range q.Metrics {
		resolved, err := cat.Resolve(id)
		if err != nil {
			return "", err
		}
		expr, err := metricExpression(resolved)
		if err != nil {
			return "", err
		}
		selectParts = append(selectParts, fmt.Sprintf("%s AS %s", expr, quoteIdent(string(id))))
	}

	if len(selectParts) == 0 {
		return "", domain.ErrValidation("metric query selects no fields")
	}

	sqlText := fmt.Sprintf("SELECT %s FROM %s AS %s",
		strings.Join(selectParts, ", "), explore.SQLTable, quoteIdent(explore.Name))

	if q.Filters.Dimensions != nil {
		where, err := filterSQL(q.Filters.Dimensions, cat, dimensionExpr)
		if err != nil {
			return "", err
		}
		if where != "" {
			sqlText += " WHERE " + where
		}
	}

	if len(groupByParts) > 0 {
		sqlText += " GROUP BY " + strings.Join(groupByParts, ", ")
	}

	if q.Filters.Metrics != nil {
		having, err := filterSQL(q.Filters.Metrics, cat, metricExpr)
		if err != nil {
			return "", err
		}
		if having != "" {
			sqlText += " HAVING " + having
		}
	}

	if len(q.TableCalculations) > 0 {
		sqlText = wrapTableCalculations(sqlText, q)
	}

	if len(q.Sorts) > 0 {
		orderParts := make([]string, 0, len(q.Sorts))
		for _, s := range q.Sorts {
			dir := "ASC"
			if s.Descending {
				dir = "DESC"
			}
			orderParts = append(orderParts, fmt.Sprintf("%s %s", quoteIdent(string(s.FieldID)), dir))
		}
		sqlText += " ORDER BY " + strings.Join(orderParts, ", ")
	}

	sqlText += fmt.Sprintf(" LIMIT %d", q.Limit)
	return sqlText, nil
}

// wrapTableCalculations projects the calculations over the aggregated base
// query. Calculation SQL references other selected fields as ${field_id};
// references are rewritten to the quoted column aliases of the base query.
func wrapTableCalculations(base string, q *domain.MetricQuery) string {
	calcParts := make([]string, 0, len(q.TableCalculations))
	for i := range q.TableCalculations {
		tc := &q.TableCalculations[i]
		expr := substituteFieldRefs(tc.SQL)
		calcParts = append(calcParts, fmt.Sprintf("%s AS %s", expr, quoteIdent(tc.Name)))
	}
	return fmt.Sprintf("WITH metrics AS (%s) SELECT *, %s FROM metrics",
		base, strings.Join(calcParts, ", "))
}

func substituteFieldRefs(sql string) string {
	var b strings.Builder
	for {
		start := strings.Index(sql, "${")
		if start < 0 {
			b.WriteString(sql)
			return b.String()
		}
		end := strings.Index(sql[start:], "}")
		if end < 0 {
			b.WriteString(sql)
			return b.String()
		}
		b.WriteString(sql[:start])
		b.WriteString(quoteIdent(sql[start+2 : start+end]))
		sql = sql[start+end+1:]
	}
}

func metricExpression(resolved catalog.ResolvedField) (string, error) {
	var aggregation, sqlExpr string
	var percentile *float64
	switch resolved.Kind {
	case catalog.KindField:
		aggregation, sqlExpr, percentile = resolved.Field.Aggregation, resolved.Field.SQL, resolved.Field.Percentile
	case catalog.KindAdditionalMetric:
		aggregation, sqlExpr, percentile = resolved.Metric.Aggregation, resolved.Metric.SQL, resolved.Metric.Percentile
	default:
		return "", domain.ErrValidation("table calculations cannot appear in the metric list")
	}

	switch aggregation {
	case domain.AggSum:
		return fmt.Sprintf("SUM(%s)", sqlExpr), nil
	case domain.AggAverage:
		return fmt.Sprintf("AVG(%s)", sqlExpr), nil
	case domain.AggCount:
		return fmt.Sprintf("COUNT(%s)", sqlExpr), nil
	case domain.AggCountDistinct:
		return fmt.Sprintf("COUNT(DISTINCT %s)", sqlExpr), nil
	case domain.AggMin:
		return fmt.Sprintf("MIN(%s)", sqlExpr), nil
	case domain.AggMax:
		return fmt.Sprintf("MAX(%s)", sqlExpr), nil
	case domain.AggMedian:
		return fmt.Sprintf("MEDIAN(%s)", sqlExpr), nil
	case domain.AggPercentile:
		p := 0.5
		if percentile != nil {
			p = *percentile / 100
		}
		return fmt.Sprintf("QUANTILE_CONT(%s, %s)", sqlExpr, strconv.FormatFloat(p, 'f', -1, 64)), nil
	default:
		return "", domain.ErrValidation("metric has invalid aggregation %q", aggregation)
	}
}

// dimensionExpr renders the raw column expression for WHERE clauses.
func dimensionExpr(resolved catalog.ResolvedField) (string, error) {
	if resolved.Kind != catalog.KindField {
		return "", domain.ErrValidation("dimension filters may only reference schema dimensions")
	}
	return resolved.Field.SQL, nil
}

// metricExpr renders the aggregate expression for HAVING clauses. Aliases
// are avoided so the clause stays portable across engines.
func metricExpr(resolved catalog.ResolvedField) (string, error) {
	return metricExpression(resolved)
}

func filterSQL(node domain.FilterNode, cat *catalog.Catalog, exprFor func(catalog.ResolvedField) (string, error)) (string, error) {
	switch n := node.(type) {
	case *domain.FilterGroup:
		children := n.Children()
		if len(children) == 0 {
			// Empty AND is vacuously true, empty OR vacuously false.
			if n.IsOr() {
				return "FALSE", nil
			}
			return "", nil
		}
		parts := make([]string, 0, len(children))
		for _, child := range children {
			part, err := filterSQL(child, cat, exprFor)
			if err != nil {
				return "", err
			}
			if part == "" {
				continue
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			return "", nil
		}
		combinator := " AND "
		if n.IsOr() {
			combinator = " OR "
		}
		return "(" + strings.Join(parts, combinator) + ")", nil
	case domain.FilterRule:
		resolved, err := cat.Resolve(n.Target.FieldRef)
		if err != nil {
			return "", err
		}
		expr, err := exprFor(resolved)
		if err != nil {
			return "", err
		}
		return ruleSQL(n, expr)
	default:
		return "", domain.ErrValidation("unsupported filter node type %T", node)
	}
}

func ruleSQL(rule domain.FilterRule, expr string) (string, error) {
	switch rule.Operator {
	case domain.OpIsNull:
		return fmt.Sprintf("(%s IS NULL)", expr), nil
	case domain.OpNotNull:
		return fmt.Sprintf("(%s IS NOT NULL)", expr), nil
	case domain.OpEquals:
		if len(rule.Values) == 0 {
			return "", nil
		}
		if len(rule.Values) == 1 {
			return fmt.Sprintf("(%s = %s)", expr, literal(rule.Values[0])), nil
		}
		return fmt.Sprintf("(%s IN (%s))", expr, literalList(rule.Values)), nil
	case domain.OpNotEquals:
		if len(rule.Values) == 0 {
			return "", nil
		}
		if len(rule.Values) == 1 {
			return fmt.Sprintf("(%s != %s)", expr, literal(rule.Values[0])), nil
		}
		return fmt.Sprintf("(%s NOT IN (%s))", expr, literalList(rule.Values)), nil
	case domain.OpInclude:
		return likeAny(expr, rule.Values, false)
	case domain.OpDoesNotInclude:
		return likeAny(expr, rule.Values, true)
	case domain.OpLessThan:
		return fmt.Sprintf("(%s < %s)", expr, literal(rule.Values[0])), nil
	case domain.OpLessThanOrEqual:
		return fmt.Sprintf("(%s <= %s)", expr, literal(rule.Values[0])), nil
	case domain.OpGreaterThan:
		return fmt.Sprintf("(%s > %s)", expr, literal(rule.Values[0])), nil
	case domain.OpGreaterThanOrEqual:
		return fmt.Sprintf("(%s >= %s)", expr, literal(rule.Values[0])), nil
	case domain.OpInBetween:
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", expr, literal(rule.Values[0]), literal(rule.Values[1])), nil
	case domain.OpInThePast:
		n, unit, err := relativeArgs(rule)
		if err != nil {
			return "", err
		}
		anchor := "NOW()"
		if rule.Settings.Completed {
			anchor = fmt.Sprintf("DATE_TRUNC('%s', NOW())", unit)
		}
		return fmt.Sprintf("(%s >= %s - INTERVAL %d %s AND %s < %s)", expr, anchor, n, strings.ToUpper(unit), expr, anchor), nil
	case domain.OpInTheNext:
		n, unit, err := relativeArgs(rule)
		if err != nil {
			return "", err
		}
		anchor := "NOW()"
		if rule.Settings.Completed {
			anchor = fmt.Sprintf("DATE_TRUNC('%s', NOW()) + INTERVAL 1 %s", unit, strings.ToUpper(unit))
		}
		return fmt.Sprintf("(%s >= %s AND %s < %s + INTERVAL %d %s)", expr, anchor, expr, anchor, n, strings.ToUpper(unit)), nil
	case domain.OpInTheCurrent:
		unit, err := unitName(rule)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(DATE_TRUNC('%s', %s) = DATE_TRUNC('%s', NOW()))", unit, expr, unit), nil
	default:
		return "", domain.ErrInvalidOperator("unknown filter operator %q", rule.Operator)
	}
}

func likeAny(expr string, values []interface{}, negate bool) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		pattern := "%" + escapeString(cast.ToString(v)) + "%"
		parts = append(parts, fmt.Sprintf("%s ILIKE '%s'", expr, pattern))
	}
	joined := "(" + strings.Join(parts, " OR ") + ")"
	if negate {
		return "(NOT " + joined + ")", nil
	}
	return joined, nil
}

var sqlUnits = map[string]string{
	domain.UnitDays:   "day",
	domain.UnitWeeks:  "week",
	domain.UnitMonths: "month",
	domain.UnitYears:  "year",
}

func unitName(rule domain.FilterRule) (string, error) {
	if rule.Settings == nil {
		return "", domain.ErrInvalidOperator("operator %q requires a unit of time", rule.Operator)
	}
	unit, ok := sqlUnits[rule.Settings.UnitOfTime]
	if !ok {
		return "", domain.ErrInvalidOperator("invalid unit of time %q", rule.Settings.UnitOfTime)
	}
	return unit, nil
}

func relativeArgs(rule domain.FilterRule) (int, string, error) {
	unit, err := unitName(rule)
	if err != nil {
		return 0, "", err
	}
	n, err := cast.ToIntE(rule.Values[0])
	if err != nil || n < 0 {
		return 0, "", domain.ErrInvalidOperator("operator %q requires a non-negative amount", rule.Operator)
	}
	return n, unit, nil
}

func literalList(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	return strings.Join(parts, ", ")
}

func literal(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t)
	case float32, float64:
		return strconv.FormatFloat(cast.ToFloat64(t), 'f', -1, 64)
	default:
		return "'" + escapeString(cast.ToString(v)) + "'"
	}
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
