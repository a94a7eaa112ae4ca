// Package apperrors carries the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindForbidden        Kind = "FORBIDDEN"
	KindInvalidCriteria  Kind = "INVALID_CRITERIA"
	KindNotFound         Kind = "NOT_FOUND"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindExternalDegraded Kind = "EXTERNAL_SERVICE_DEGRADED"
	KindInternal         Kind = "INTERNAL"
)

// Error is an application error. Message is safe to show to clients,
// Err is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// InvalidCriteria reports a malformed client input; field names the offending parameter.
func InvalidCriteria(field, message string) *Error {
	return &Error{Kind: KindInvalidCriteria, Field: field, Message: message}
}

// InvalidCriteriaWrap is InvalidCriteria with a sentinel cause, so callers can errors.Is on it.
func InvalidCriteriaWrap(field, message string, cause error) *Error {
	return &Error{Kind: KindInvalidCriteria, Field: field, Message: message, Err: cause}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func StoreUnavailable(message string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: message, Err: err}
}

func ExternalDegraded(message string, err error) *Error {
	return &Error{Kind: KindExternalDegraded, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err onto the status code the API answers with.
// Forbidden answers 401 as well; clients have always keyed on that code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated, KindForbidden:
		return http.StatusUnauthorized
	case KindInvalidCriteria:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindExternalDegraded:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client visible message of err.
func PublicMessage(err error) (message, field string) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message, appErr.Field
	}
	return "An error has occurred. Please try again later.", ""
}
