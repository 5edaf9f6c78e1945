package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps form field names to human-readable messages.
type FieldErrors map[string]string

// ValidationError reports one or more malformed or missing fields.
// All failing fields are collected before the error is returned.
type ValidationError struct {
	Fields FieldErrors
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: message}}
}

// NewFieldErrors wraps a collected field->message map.
func NewFieldErrors(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// BusinessRuleError reports a well-formed request that breaks a booking rule,
// such as the Wadi tent minimum or the lead-time requirement.
type BusinessRuleError struct {
	Rule    string
	Message string
}

// NewBusinessRuleError creates a BusinessRuleError.
func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

// NotFoundError indicates a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ConflictError indicates the request lost to an already-committed state,
// e.g. a date locked to a different location.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InvalidStateError indicates an operation that the entity's current
// state does not permit.
type InvalidStateError struct {
	Current string
	Target  string
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(current, target string) *InvalidStateError {
	return &InvalidStateError{Current: current, Target: target}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.Current, e.Target)
}

// PaymentError indicates the payment provider rejected or failed the
// session handoff. The booking itself may already be persisted.
type PaymentError struct {
	Message string
	Cause   error
}

// NewPaymentError creates a PaymentError wrapping the provider failure.
func NewPaymentError(message string, cause error) *PaymentError {
	return &PaymentError{Message: message, Cause: cause}
}

func (e *PaymentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
