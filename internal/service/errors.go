package service

import (
	"errors"
	"fmt"
	"strings"
)

// Business-rule violations. Each terminates the current operation without
// side effects beyond what already committed; the HTTP layer maps them to
// status codes and stable error codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrCrossTenantAccess  = errors.New("resource belongs to another tenant")
	ErrAlreadyProcessed   = errors.New("request already processed")
	ErrAlreadyClockedIn   = errors.New("already clocked in today")
	ErrAlreadyClockedOut  = errors.New("already clocked out today")
	ErrNoClockIn          = errors.New("no clock-in recorded today")
	ErrSelfSupervision    = errors.New("employee cannot supervise themselves")
	ErrSenderNotFound     = errors.New("sender employee not found")
	ErrReceiverNotFound   = errors.New("receiver employee not found")
	ErrSelfRecognition    = errors.New("cannot send kudos to yourself")
	ErrFederatedDisabled  = errors.New("federated login is not configured")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries a field-level breakdown so clients can attach
// messages to the offending inputs.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// errOrNil returns nil when no field failed.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
