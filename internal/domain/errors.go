// Package domain defines the core types and errors of the metric query layer.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input that fits no more specific category.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnknownFieldError indicates a field reference that resolves to nothing in
// the explore schema, the query's additional metrics, or its table calculations.
type UnknownFieldError struct {
	FieldID FieldID
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", string(e.FieldID))
}

// InvalidFilterReferenceError indicates a filter rule targeting an unresolvable field.
type InvalidFilterReferenceError struct {
	FieldID FieldID
}

func (e *InvalidFilterReferenceError) Error() string {
	return fmt.Sprintf("filter references unknown field %q", string(e.FieldID))
}

// InvalidOperatorError indicates a filter operator that does not apply to the
// targeted field's type, or rule values that do not fit the operator's arity.
type InvalidOperatorError struct {
	Message string
}

func (e *InvalidOperatorError) Error() string { return e.Message }

// DuplicateFieldNameError indicates a name collision between a table
// calculation and an existing dimension, metric, or other table calculation.
type DuplicateFieldNameError struct {
	Name string
}

func (e *DuplicateFieldNameError) Error() string {
	return fmt.Sprintf("duplicate field name %q", e.Name)
}

// InvalidSortFieldError indicates a sort referencing a field that is not part
// of the query's selected dimensions, metrics, or table calculations.
type InvalidSortFieldError struct {
	FieldID FieldID
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("sort references field %q which is not selected", string(e.FieldID))
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidOperator creates an InvalidOperatorError with a formatted message.
func ErrInvalidOperator(format string, args ...interface{}) *InvalidOperatorError {
	return &InvalidOperatorError{Message: fmt.Sprintf(format, args...)}
}
