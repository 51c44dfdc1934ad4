// Package domainerrors provides coded errors for the domain layer.
//
// Services return these so transports can map outcomes to responses without
// string matching. Infrastructure facts (row missing, key expired) use
// pkg/platform/sentinel instead; services translate sentinels into coded
// errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error.
type Code string

const (
	// Generic codes shared by every feature.
	CodeValidation         Code = "validation"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal"

	// Deal and compliance codes. These carry the business outcome taxonomy
	// end-to-end so dashboards can tell "rejected for cause X" from a fault.
	CodeInvalidSplit            Code = "invalid_split"
	CodeInvalidStateTransition  Code = "invalid_state_transition"
	CodeJurisdictionNotApproved Code = "jurisdiction_not_approved"
	CodeSanctionsHit            Code = "sanctions_hit"
	CodeComplianceRejected      Code = "compliance_rejected"
	CodeTransferFailed          Code = "transfer_failed"
	CodeAlreadyExecuted         Code = "already_executed"
)

// Error is a coded domain error. Use New or Wrap to construct.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so transports never leak raw failures.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from err, or a generic fallback.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
