package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/creatorhub/services"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "validation error",
			err:             services.ErrSlugTaken,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Slug already taken",
		},
		{
			name:            "unauthorized error",
			err:             services.ErrLoginFailed,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Login failed",
		},
		{
			name:            "forbidden error",
			err:             services.ErrTenantForbidden,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Forbidden: access denied to this creator",
		},
		{
			name:            "not found error",
			err:             services.ErrCreatorNotFound,
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Creator not found",
		},
		{
			name:            "conflict error",
			err:             services.ErrConcurrentUpdate,
			expectedStatus:  http.StatusConflict,
			expectedMessage: "concurrent update detected",
		},
		{
			name:            "upstream error keeps its message",
			err:             services.WrapUpstream("Failed to create Ghost author", errors.New("dial tcp: refused")),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Failed to create Ghost author",
		},
		{
			name:            "internal error hides its cause",
			err:             services.WrapInternal("failed to load user", errors.New("pq: connection reset")),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
		{
			name:            "unknown error",
			err:             errors.New("some unknown error"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedMessage, response.Error)
		})
	}
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	err := services.ErrUnknownRole.WithDetail("role", "OWNER")

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Role not found","details":{"role":"OWNER"}}`, w.Body.String())
}

func TestHandleServiceErrorNil(t *testing.T) {
	w := httptest.NewRecorder()

	HandleServiceError(w, nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("field validation error", func(t *testing.T) {
		err := &utils.ValidationError{
			Message: "email must be a valid email address",
			Fields:  map[string]string{"email": "email must be a valid email address"},
		}

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "email must be a valid email address", response.Error)
		assert.Equal(t, "email must be a valid email address", response.Details["email"])
	})

	t.Run("generic error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("request body is required"), logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"request body is required"}`, w.Body.String())
	})
}
