package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"lingogate/internal/auth"
	apierrors "lingogate/internal/errors"
	"lingogate/internal/infrastructure"
)

// TokenVerifier checks a bearer credential and returns the verified
// identity. Production uses Firebase Auth; tests substitute a stub.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.Identity, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the verified identity placed in the request
// context by Authenticator, or nil
func IdentityFromContext(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityContextKey{}).(*auth.Identity)
	return identity
}

// ContextWithIdentity returns a context carrying the identity, as
// Authenticator would set it. Handler tests use it to bypass token
// verification.
func ContextWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// Authenticator rejects requests without a valid bearer token before any
// business logic runs. Verified identities are placed in the request
// context for handlers.
type Authenticator struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates the auth middleware
func NewAuthenticator(verifier TokenVerifier, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth_middleware")),
	}
}

// Handler returns the middleware handler function
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.reject(w, r, apierrors.TypeAuthMissingToken, "No bearer token provided")
			return
		}

		idToken := strings.TrimPrefix(header, "Bearer ")
		identity, err := a.verifier.Verify(ctx, idToken)
		if err != nil {
			a.logger.WarnContext(ctx, "token verification failed",
				slog.String("error", err.Error()),
				slog.String("path", r.URL.Path),
			)
			a.reject(w, r, apierrors.TypeAuthInvalidToken, "Invalid or expired identity token")
			return
		}

		ctx = context.WithValue(ctx, identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, problemType, detail string) {
	status := http.StatusUnauthorized
	problem := apierrors.NewProblemDetails(status, problemType, "Unauthorized", detail, r.URL.Path)
	problem.WithExtension("trace_id", infrastructure.TraceIDFromContext(r.Context()))
	render.Render(w, r, problem)
}
