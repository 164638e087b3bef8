package api

import (
	"errors"
	"net/http"

	"prism/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var unknownField *domain.UnknownFieldError
	var filterRef *domain.InvalidFilterReferenceError
	var operator *domain.InvalidOperatorError
	var duplicate *domain.DuplicateFieldNameError
	var sortField *domain.InvalidSortFieldError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &unknownField),
		errors.As(err, &filterRef),
		errors.As(err, &operator),
		errors.As(err, &duplicate),
		errors.As(err, &sortField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
