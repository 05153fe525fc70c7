package translate

import (
	"context"
	"fmt"
	"log/slog"

	translate "cloud.google.com/go/translate/apiv3"
	"cloud.google.com/go/translate/apiv3/translatepb"
	"google.golang.org/api/option"

	"lingogate/internal/config"
)

// GoogleTranslator proxies plain-text translation to the Cloud
// Translation v3 API
type GoogleTranslator struct {
	client  *translate.TranslationClient
	parent  string
	timeout config.TranslationConfig
	logger  *slog.Logger
}

// NewGoogleTranslator creates the Cloud Translation client. Credentials
// fall back to application default credentials when no file is configured.
func NewGoogleTranslator(ctx context.Context, cfg config.TranslationConfig, credentialsFile string, logger *slog.Logger) (*GoogleTranslator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := translate.NewTranslationClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}

	return &GoogleTranslator{
		client:  client,
		parent:  fmt.Sprintf("projects/%s/locations/%s", cfg.ProjectID, cfg.Location),
		timeout: cfg,
		logger:  logger.With(slog.String("component", "google_translator")),
	}, nil
}

// Translate converts text into the target language and returns the
// translated text
func (t *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout.Timeout)
	defer cancel()

	resp, err := t.client.TranslateText(ctx, &translatepb.TranslateTextRequest{
		Parent:             t.parent,
		Contents:           []string{text},
		MimeType:           "text/plain",
		TargetLanguageCode: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}

	translations := resp.GetTranslations()
	if len(translations) == 0 {
		return "", fmt.Errorf("translate text: empty response")
	}
	return translations[0].GetTranslatedText(), nil
}

// Close releases the underlying client
func (t *GoogleTranslator) Close() error {
	return t.client.Close()
}
