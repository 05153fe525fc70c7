package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusForbidden, "LICENSE_DENIED", "denied")
	assert.Equal(t, "denied", err.Error())
	assert.Equal(t, http.StatusForbidden, err.StatusCode)

	withDetails := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "bad", "field missing")
	assert.Equal(t, "field missing", withDetails.Details)
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusForbidden, TypeLicenseDenied, "License Denied", "trial expired", "/api/translate")
	pd.WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeLicenseDenied, decoded["type"])
	assert.Equal(t, "License Denied", decoded["title"])
	assert.Equal(t, float64(403), decoded["status"])
	assert.Equal(t, "trial expired", decoded["detail"])
	assert.Equal(t, "/api/translate", decoded["instance"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
}

func TestErrorHandlerMapsAPIErrors(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"license denied", ErrLicenseDenied, http.StatusForbidden, TypeLicenseDenied},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, TypeAuthInvalidToken},
		{"store unavailable", ErrStoreUnavailable, http.StatusServiceUnavailable, TypeStoreUnavailable},
		{"payment rejected", ErrPaymentRejected, http.StatusBadRequest, TypePaymentRejected},
		{"translation failed", ErrTranslationFailed, http.StatusInternalServerError, TypeTranslationFailed},
		{"wrapped api error", fmt.Errorf("outer: %w", ErrLicenseDenied), http.StatusForbidden, TypeLicenseDenied},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
		{"context deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
		})
	}
}

func TestNewLicenseDeniedProblem(t *testing.T) {
	pd := NewLicenseDeniedProblem("/api/translate", "trace-1")
	assert.Equal(t, http.StatusForbidden, pd.Status)
	assert.Equal(t, TypeLicenseDenied, pd.Type)
	assert.Equal(t, "trace-1", pd.Extensions["trace_id"])
	assert.Contains(t, pd.Detail, "purchase a plan")
}
