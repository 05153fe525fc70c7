package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingogate/internal/config"
	"lingogate/internal/infrastructure"
	"lingogate/internal/license"
	"lingogate/internal/services"
	"lingogate/internal/store"
)

type echoTranslator struct{}

func (echoTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return "[" + targetLang + "] " + text, nil
}

// newTestApplication builds a container on the in-memory store without
// touching external services
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.License.Enforcement = false
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewMemoryStore()
	evaluator := license.NewEvaluator(st, cfg.License, logger)

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: &infrastructure.OTelProviders{},
		Store:         st,
		Services: &ServiceContainer{
			Translation: services.NewTranslationService(evaluator, echoTranslator{}, logger, nil),
			License:     services.NewLicenseService(st, cfg.License, logger),
			Health:      services.NewHealthService(Version, "", st, logger),
		},
	}
	a.setupRouter()
	a.setupServer()
	return a
}

func TestRootBanner(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, AppName, body["service"])
	assert.Equal(t, "running", body["status"])
}

func TestHealthRoutes(t *testing.T) {
	a := newTestApplication(t)

	for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/api/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestProtectedRoutesRejectAnonymousRequests(t *testing.T) {
	a := newTestApplication(t)

	// no verifier is configured, so protected handlers see no identity
	req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/license/status", nil)
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServerConfiguration(t *testing.T) {
	a := newTestApplication(t)

	assert.Equal(t, ":8080", a.Server.Addr)
	assert.Equal(t, a.Config.Server.ReadTimeout, a.Server.ReadTimeout)
	assert.Equal(t, a.Config.Server.WriteTimeout, a.Server.WriteTimeout)
}
