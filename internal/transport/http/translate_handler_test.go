package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lingogate/internal/auth"
	apierrors "lingogate/internal/errors"
	"lingogate/internal/middleware"
)

type mockTranslationService struct {
	mock.Mock
}

func (m *mockTranslationService) Translate(ctx context.Context, userID, text, targetLang string) (string, error) {
	args := m.Called(ctx, userID, text, targetLang)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTranslateRequest(t *testing.T, body interface{}, identity *auth.Identity) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/translate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		req = req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
	}
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestTranslateHandlerSuccess(t *testing.T) {
	svc := new(mockTranslationService)
	svc.On("Translate", mock.Anything, "user@example.com", "hello", "ko").
		Return("안녕하세요", nil)

	handler := NewTranslateHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger()))

	req := newTranslateRequest(t, TranslateRequest{Text: "hello", TargetLang: "ko"},
		&auth.Identity{UID: "uid-1", Email: "user@example.com"})
	rec := httptest.NewRecorder()
	handler.Translate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TranslateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "안녕하세요", resp.TranslatedText)
	svc.AssertExpectations(t)
}

func TestTranslateHandlerMissingIdentity(t *testing.T) {
	svc := new(mockTranslationService)
	handler := NewTranslateHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger()))

	req := newTranslateRequest(t, TranslateRequest{Text: "hello", TargetLang: "ko"}, nil)
	rec := httptest.NewRecorder()
	handler.Translate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Translate")
}

func TestTranslateHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body TranslateRequest
	}{
		{name: "missing text", body: TranslateRequest{TargetLang: "ko"}},
		{name: "missing target lang", body: TranslateRequest{Text: "hello"}},
		{name: "target lang too short", body: TranslateRequest{Text: "hello", TargetLang: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockTranslationService)
			handler := NewTranslateHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger()))

			req := newTranslateRequest(t, tt.body, &auth.Identity{Email: "user@example.com"})
			rec := httptest.NewRecorder()
			handler.Translate(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Translate")
		})
	}
}

func TestTranslateHandlerLicenseDenied(t *testing.T) {
	svc := new(mockTranslationService)
	svc.On("Translate", mock.Anything, "user@example.com", "hello", "ko").
		Return("", apierrors.ErrLicenseDenied)

	handler := NewTranslateHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger()))

	req := newTranslateRequest(t, TranslateRequest{Text: "hello", TargetLang: "ko"},
		&auth.Identity{Email: "user@example.com"})
	rec := httptest.NewRecorder()
	handler.Translate(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, apierrors.TypeLicenseDenied, problem["type"])
	assert.Contains(t, problem["detail"], "purchase")
}

func TestTranslateHandlerStoreUnavailable(t *testing.T) {
	svc := new(mockTranslationService)
	svc.On("Translate", mock.Anything, "user@example.com", "hello", "ko").
		Return("", apierrors.ErrStoreUnavailable)

	handler := NewTranslateHandler(svc, discardLogger(), apierrors.NewErrorHandler(discardLogger()))

	req := newTranslateRequest(t, TranslateRequest{Text: "hello", TargetLang: "ko"},
		&auth.Identity{Email: "user@example.com"})
	rec := httptest.NewRecorder()
	handler.Translate(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
