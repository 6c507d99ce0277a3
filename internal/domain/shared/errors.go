package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context
const (
	CodeValidation             = "VALIDATION_FAILED"
	CodeInvalidState           = "INVALID_STATE"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeConflict               = "CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodePreconditionFailed     = "PRECONDITION_FAILED"
	CodeKYBRequired            = "KYB_REQUIRED"
	CodeManualReviewRequired   = "MANUAL_REVIEW_REQUIRED"
	CodeInternal               = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches domain errors by code so sentinel comparisons survive WithDetail copies
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error with an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_FAILED error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// WrapInternal wraps an infrastructure failure as INTERNAL_ERROR
func WrapInternal(message string, cause error) *DomainError {
	return &DomainError{Code: CodeInternal, Message: message, Cause: cause}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConflict            = NewDomainError(CodeConflict, "Resource conflicts with existing state")
)

// CodeOf returns the domain error code of err, or CodeInternal
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsConcurrentModification reports whether err is an optimistic locking failure
func IsConcurrentModification(err error) bool {
	return CodeOf(err) == CodeConcurrentModification
}

// IsConflict reports whether err is a CONFLICT domain error
func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

// IsPreconditionFailed reports whether err is a PRECONDITION_FAILED domain error
func IsPreconditionFailed(err error) bool {
	return CodeOf(err) == CodePreconditionFailed
}
