package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "user not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same sentinel", ErrCreatorNotFound, ErrCreatorNotFound, true},
		{"wrapped sentinel", ErrCreatorNotFound.Wrap(errors.New("sql: no rows")), ErrCreatorNotFound, true},
		{"same type different message", ErrSlugTaken, ErrAlreadyCreator, false},
		{"any message of type", ErrSlugTaken, &DomainError{Type: ErrorTypeValidation}, true},
		{"different type", ErrInvalidInput, ErrCreatorNotFound, false},
		{"not a domain error", ErrCreatorNotFound, errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrInvalidInput.WithDetail("field", "email").WithDetail("value", "nope")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "nope", err.Details["value"])
	assert.Empty(t, ErrInvalidInput.Details)
}

func TestTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrSubscriptionNotFound), IsNotFoundError, true},
		{"validation", ErrSlugTaken, IsValidationError, true},
		{"unauthorized", ErrLoginFailed, IsUnauthorizedError, true},
		{"forbidden", ErrTenantForbidden, IsForbiddenError, true},
		{"conflict", ErrConcurrentUpdate, IsConflictError, true},
		{"upstream", ErrContentGateway, IsUpstreamError, true},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"forbidden is not unauthorized", ErrForbidden, IsUnauthorizedError, false},
		{"regular error", errors.New("regular"), IsInternalError, false},
		{"nil error", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrCreatorNotFound))
	assert.Equal(t, ErrorTypeUpstream, GetErrorType(WrapUpstream("ghost down", errors.New("503"))))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("regular")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil).
		WithDetail("field", "email")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])

	assert.Nil(t, GetErrorDetails(ErrInvalidInput))
	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestGetErrorMessage(t *testing.T) {
	err := ErrCreatorNotFound.Wrap(errors.New("pq: relation does not exist"))

	assert.Equal(t, "Creator not found", GetErrorMessage(err))
	assert.Equal(t, "", GetErrorMessage(errors.New("regular")))
}

func TestWrapHelpers(t *testing.T) {
	baseErr := errors.New("connection refused")

	internal := WrapInternal("failed to connect", baseErr)
	assert.True(t, IsInternalError(internal))
	assert.Equal(t, baseErr, errors.Unwrap(internal))

	upstream := WrapUpstream("ghost request failed", baseErr)
	assert.True(t, IsUpstreamError(upstream))
	assert.Equal(t, baseErr, errors.Unwrap(upstream))

	validation := Validationf("Role %s not found", "OWNER")
	assert.True(t, IsValidationError(validation))
	assert.Equal(t, "Role OWNER not found", GetErrorMessage(validation))
}
