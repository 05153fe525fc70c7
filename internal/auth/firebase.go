package auth

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"lingogate/internal/config"
)

// Identity is a verified caller identity. Key is the user identifier the
// rest of the system uses: the email when the token carries one, the
// provider UID otherwise.
type Identity struct {
	UID   string
	Email string
}

// Key returns the canonical user identifier for this identity
func (id Identity) Key() string {
	if id.Email != "" {
		return id.Email
	}
	return id.UID
}

// FirebaseVerifier verifies Firebase ID tokens
type FirebaseVerifier struct {
	client *firebaseauth.Client
	logger *slog.Logger
}

// NewFirebaseVerifier initializes the Firebase app and its auth client
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig, logger *slog.Logger) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	logger.InfoContext(ctx, "firebase auth initialized",
		slog.String("project_id", cfg.ProjectID),
	)

	return &FirebaseVerifier{
		client: client,
		logger: logger.With(slog.String("component", "firebase_verifier")),
	}, nil
}

// Verify checks the bearer token against Firebase Auth and returns the
// verified identity
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	identity := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
