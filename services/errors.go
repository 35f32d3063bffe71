package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUpstream     ErrorType = "upstream"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when type and message match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Type: e.Type, Message: e.Message, Err: e.Err, Details: details}
}

// Wrap returns a copy of the error carrying cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Type: e.Type, Message: e.Message, Err: cause, Details: e.Details}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation Errors
	ErrInvalidInput        = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrCredentialsRequired = NewDomainError(ErrorTypeValidation, "Email and password are required", nil)
	ErrAlreadyCreator      = NewDomainError(ErrorTypeValidation, "User is already a creator", nil)
	ErrSlugTaken           = NewDomainError(ErrorTypeValidation, "Slug already taken", nil)
	ErrUnknownRole         = NewDomainError(ErrorTypeValidation, "Role not found", nil)
	ErrAuthorMappingNeeded = NewDomainError(ErrorTypeValidation, "Ghost author mapping not found. Please set up author first.", nil)

	// Authentication Errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "Unauthorized", nil)
	ErrLoginFailed  = NewDomainError(ErrorTypeUnauthorized, "Login failed", nil)

	// Permission Errors
	ErrForbidden       = NewDomainError(ErrorTypeForbidden, "Forbidden", nil)
	ErrRoleRequired    = NewDomainError(ErrorTypeForbidden, "Forbidden: role required", nil)
	ErrTenantForbidden = NewDomainError(ErrorTypeForbidden, "Forbidden: access denied to this creator", nil)

	// Not Found Errors
	ErrUserNotFound         = NewDomainError(ErrorTypeNotFound, "User not found", nil)
	ErrCreatorNotFound      = NewDomainError(ErrorTypeNotFound, "Creator not found", nil)
	ErrSubscriptionNotFound = NewDomainError(ErrorTypeNotFound, "Subscription not found", nil)

	// Conflict Errors
	ErrConcurrentUpdate = NewDomainError(ErrorTypeConflict, "concurrent update detected", nil)

	// Upstream Errors
	ErrContentGateway = NewDomainError(ErrorTypeUpstream, "content gateway request failed", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// Error type checking helper functions

func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool { return isType(err, ErrorTypeUnauthorized) }

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool { return isType(err, ErrorTypeForbidden) }

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool { return isType(err, ErrorTypeConflict) }

// IsUpstreamError checks if an error came from the content gateway
func IsUpstreamError(err error) bool { return isType(err, ErrorTypeUpstream) }

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool { return isType(err, ErrorTypeInternal) }

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && len(domainErr.Details) > 0 {
		return domainErr.Details
	}
	return nil
}

// GetErrorMessage returns the client-facing message of a domain error,
// without the wrapped cause.
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapUpstream wraps a content gateway failure
func WrapUpstream(message string, err error) error {
	return NewDomainError(ErrorTypeUpstream, message, err)
}

// Validationf builds a validation error with a formatted message
func Validationf(format string, args ...interface{}) error {
	return NewDomainError(ErrorTypeValidation, fmt.Sprintf(format, args...), nil)
}
