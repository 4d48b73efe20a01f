package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewTicketNotFound reports an unknown ticket identifier.
func NewTicketNotFound(ticketID string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("ticket %s not found", ticketID), http.StatusNotFound, map[string]any{
		"ticket_id": ticketID,
	})
}

// NewSchemaUnresolved reports that the identity column could not be located
// even after healing, carrying the observed headers for diagnosis.
func NewSchemaUnresolved(table string, headers []string) error {
	return NewDomainError("SCHEMA_UNRESOLVED", fmt.Sprintf("identity column unresolvable in table %s", table), http.StatusUnprocessableEntity, map[string]any{
		"table":   table,
		"headers": headers,
	})
}

// NewAlreadyRated reports a duplicate rating attempt.
func NewAlreadyRated(ticketID string) error {
	return NewDomainError("ALREADY_RATED", fmt.Sprintf("ticket %s has already been rated", ticketID), http.StatusConflict, map[string]any{
		"ticket_id": ticketID,
	})
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
