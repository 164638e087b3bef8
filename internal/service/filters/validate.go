// Package filters validates and evaluates nested AND/OR filter trees.
package filters

import (
	"prism/internal/catalog"
	"prism/internal/domain"
)

// Scope restricts which field kind a filter tree may reference.
type Scope string

// Filter scopes.
const (
	ScopeAny        Scope = ""
	ScopeDimensions Scope = domain.FieldKindDimension
	ScopeMetrics    Scope = domain.FieldKindMetric
)

// Validate walks the filter tree and checks every rule's target resolves and
// its operator applies to the target's type. A nil group is the identity
// filter and always valid.
func Validate(group *domain.FilterGroup, cat *catalog.Catalog, scope Scope) error {
	if group == nil {
		return nil
	}
	return validateNode(group, cat, scope)
}

func validateNode(node domain.FilterNode, cat *catalog.Catalog, scope Scope) error {
	switch n := node.(type) {
	case *domain.FilterGroup:
		if n.And != nil && n.Or != nil {
			return domain.ErrValidation("filter group %q sets both \"and\" and \"or\"", n.ID)
		}
		for _, child := range n.Children() {
			if err := validateNode(child, cat, scope); err != nil {
				return err
			}
		}
		return nil
	case domain.FilterRule:
		return validateRule(n, cat, scope)
	default:
		return domain.ErrValidation("unsupported filter node type %T", node)
	}
}

func validateRule(rule domain.FilterRule, cat *catalog.Catalog, scope Scope) error {
	resolved, err := cat.Resolve(rule.Target.FieldRef)
	if err != nil {
		return &domain.InvalidFilterReferenceError{FieldID: rule.Target.FieldRef}
	}
	if !resolved.IsFilterable() {
		return &domain.InvalidFilterReferenceError{FieldID: rule.Target.FieldRef}
	}
	if scope != ScopeAny && resolved.FieldKind() != string(scope) {
		return domain.ErrValidation("filter on %q must reference a %s field", rule.Target.FieldRef, scope)
	}
	return validateOperator(rule, resolved.ValueType())
}

var validUnits = map[string]bool{
	domain.UnitDays: true, domain.UnitWeeks: true, domain.UnitMonths: true, domain.UnitYears: true,
}

func validateOperator(rule domain.FilterRule, valueType string) error {
	op := rule.Operator
	switch op {
	case domain.OpIsNull, domain.OpNotNull:
		// Values are ignored.
		return nil

	case domain.OpEquals, domain.OpNotEquals:
		return nil

	case domain.OpInclude, domain.OpDoesNotInclude:
		if valueType != domain.TypeString {
			return domain.ErrInvalidOperator("operator %q applies only to string fields, got %q on %q", op, valueType, rule.Target.FieldRef)
		}
		return nil

	case domain.OpLessThan, domain.OpLessThanOrEqual, domain.OpGreaterThan, domain.OpGreaterThanOrEqual:
		if !domain.IsNumericType(valueType) && !domain.IsDateType(valueType) {
			return domain.ErrInvalidOperator("operator %q requires a numeric or date field, got %q on %q", op, valueType, rule.Target.FieldRef)
		}
		if len(rule.Values) != 1 {
			return domain.ErrInvalidOperator("operator %q requires exactly one value, got %d", op, len(rule.Values))
		}
		return nil

	case domain.OpInBetween:
		if !domain.IsNumericType(valueType) && !domain.IsDateType(valueType) {
			return domain.ErrInvalidOperator("operator %q requires a numeric or date field, got %q on %q", op, valueType, rule.Target.FieldRef)
		}
		if len(rule.Values) != 2 {
			return domain.ErrInvalidOperator("operator %q requires exactly two values, got %d", op, len(rule.Values))
		}
		return nil

	case domain.OpInThePast, domain.OpInTheNext, domain.OpInTheCurrent:
		if !domain.IsDateType(valueType) {
			return domain.ErrInvalidOperator("operator %q applies only to date fields, got %q on %q", op, valueType, rule.Target.FieldRef)
		}
		if rule.Settings == nil || !validUnits[rule.Settings.UnitOfTime] {
			return domain.ErrInvalidOperator("operator %q requires a unit of time (days, weeks, months, years)", op)
		}
		if op != domain.OpInTheCurrent && len(rule.Values) != 1 {
			return domain.ErrInvalidOperator("operator %q requires exactly one amount value, got %d", op, len(rule.Values))
		}
		return nil

	default:
		return domain.ErrInvalidOperator("unknown filter operator %q", op)
	}
}
