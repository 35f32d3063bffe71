package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"message": "test"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"test"}`, w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter) error
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) error { return WriteBadRequest(w, "Email is required", nil) }, http.StatusBadRequest, `{"error":"Email is required"}`},
		{"bad request details", func(w http.ResponseWriter) error {
			return WriteBadRequest(w, "bad", map[string]interface{}{"email": "required"})
		}, http.StatusBadRequest, `{"error":"bad","details":{"email":"required"}}`},
		{"unauthorized default", func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") }, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"forbidden default", func(w http.ResponseWriter) error { return WriteForbidden(w, "") }, http.StatusForbidden, `{"error":"Forbidden"}`},
		{"not found", func(w http.ResponseWriter) error { return WriteNotFound(w, "Creator not found") }, http.StatusNotFound, `{"error":"Creator not found"}`},
		{"conflict", func(w http.ResponseWriter) error { return WriteConflict(w, "taken", nil) }, http.StatusConflict, `{"error":"taken"}`},
		{"internal default", func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") }, http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"status text fallback", func(w http.ResponseWriter) error { return WriteError(w, http.StatusTeapot, "", nil) }, http.StatusTeapot, `{"error":"I'm a teapot"}`},
		{"message", func(w http.ResponseWriter) error { return WriteMessage(w, "Logged out") }, http.StatusOK, `{"message":"Logged out"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","extra":1}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "a@example.com", dst.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.EqualError(t, DecodeJSON(r, &dst), "request body is required")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	err := DecodeJSON(r, &dst)
	require.Error(t, err)
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)
	assert.Equal(t, 3, QueryInt(r, "page", 1))
	assert.Equal(t, 20, QueryInt(r, "limit", 20))
	assert.Equal(t, 7, QueryInt(r, "missing", 7))
}
