package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingogate/internal/auth"
	apierrors "lingogate/internal/errors"
)

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, idToken string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func TestAuthenticator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		authHeader string
		verifier   *stubVerifier
		wantStatus int
		wantType   string
		wantKey    string
	}{
		{
			name:       "missing header is rejected",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantType:   apierrors.TypeAuthMissingToken,
		},
		{
			name:       "non-bearer header is rejected",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantType:   apierrors.TypeAuthMissingToken,
		},
		{
			name:       "invalid token is rejected",
			authHeader: "Bearer bad-token",
			verifier:   &stubVerifier{err: errors.New("token expired")},
			wantStatus: http.StatusUnauthorized,
			wantType:   apierrors.TypeAuthInvalidToken,
		},
		{
			name:       "valid token passes with identity in context",
			authHeader: "Bearer good-token",
			verifier:   &stubVerifier{identity: &auth.Identity{UID: "uid-1", Email: "alice@example.com"}},
			wantStatus: http.StatusOK,
			wantKey:    "alice@example.com",
		},
		{
			name:       "valid token without email falls back to uid",
			authHeader: "Bearer good-token",
			verifier:   &stubVerifier{identity: &auth.Identity{UID: "uid-2"}},
			wantStatus: http.StatusOK,
			wantKey:    "uid-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity := IdentityFromContext(r.Context())
				require.NotNil(t, identity)
				gotKey = identity.Key()
				w.WriteHeader(http.StatusOK)
			})

			handler := NewAuthenticator(tt.verifier, logger).Handler(next)

			req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantType, body["type"])
			}
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantKey, gotKey)
			}
		})
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	assert.Nil(t, IdentityFromContext(context.Background()))
}
