// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"net/http"
)

// ErrorType is the semantic category of a service error. The categories
// cover the failure modes of the session lifecycle: bad caller input,
// missing sessions, enhancement-guard and KV revision conflicts, and an
// unreachable NATS or bot provider.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeInternal
	ErrorTypeUnavailable
)

// HTTPStatus maps the category onto the HTTP status code the API surface
// replies with.
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// DomainError carries a category alongside the message so callers branch on
// semantics, not on message text. Underlying causes are joined and exposed
// through Unwrap for errors.Is/As matching.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func newDomainError(t ErrorType, message string, errs []error) *DomainError {
	return &DomainError{Type: t, Message: message, Err: errors.Join(errs...)}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType classifies any error. Errors without a DomainError in their
// chain are treated as internal.
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal
}

// NewValidationError reports invalid caller input, e.g. a missing meeting
// URL or a malformed webhook body.
func NewValidationError(message string, errs ...error) *DomainError {
	return newDomainError(ErrorTypeValidation, message, errs)
}

// NewNotFoundError reports a session UID with no persisted record.
func NewNotFoundError(message string, errs ...error) *DomainError {
	return newDomainError(ErrorTypeNotFound, message, errs)
}

// NewConflictError reports a lost optimistic-concurrency race or a second
// enhancement attempt against the same session.
func NewConflictError(message string, errs ...error) *DomainError {
	return newDomainError(ErrorTypeConflict, message, errs)
}

// NewInternalError reports a failure the caller cannot act on.
func NewInternalError(message string, errs ...error) *DomainError {
	return newDomainError(ErrorTypeInternal, message, errs)
}

// NewUnavailableError reports that a backing dependency, the NATS
// connection or the KV bucket, is not currently reachable.
func NewUnavailableError(message string, errs ...error) *DomainError {
	return newDomainError(ErrorTypeUnavailable, message, errs)
}
