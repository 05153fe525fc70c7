package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "lingogate/internal/errors"
	"lingogate/internal/infrastructure"
	"lingogate/internal/license"
)

// Translator is the outbound translation contract. Production is the
// Cloud Translation client; tests substitute a stub.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslationService gates and proxies translation requests
type TranslationService interface {
	// Translate runs the license gate for userID and, if allowed,
	// translates text into targetLang.
	Translate(ctx context.Context, userID, text, targetLang string) (string, error)
}

// translationService implements TranslationService
type translationService struct {
	evaluator  *license.Evaluator
	translator Translator
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics
}

// NewTranslationService creates the gated translation service
func NewTranslationService(evaluator *license.Evaluator, translator Translator, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) TranslationService {
	return &translationService{
		evaluator:  evaluator,
		translator: translator,
		logger:     logger.With(slog.String("service", "translation")),
		metrics:    metrics,
	}
}

// Translate evaluates the caller's license and proxies the translation.
// Denials and store failures reject the request; they never panic. The
// upstream translation error detail stays in the logs.
func (s *translationService) Translate(ctx context.Context, userID, text, targetLang string) (string, error) {
	start := time.Now()

	decision, err := s.evaluator.Evaluate(ctx, userID)
	if err != nil {
		s.record(ctx, start, "store_error")
		return "", apierrors.ErrStoreUnavailable
	}
	if !decision.Allowed {
		s.logger.InfoContext(ctx, "translation denied by license gate",
			slog.String("user", userID),
			slog.String("reason", string(decision.Reason)),
		)
		s.record(ctx, start, "denied")
		return "", apierrors.ErrLicenseDenied
	}

	translated, err := s.translator.Translate(ctx, text, targetLang)
	if err != nil {
		s.logger.ErrorContext(ctx, "translation upstream failed",
			slog.String("user", userID),
			slog.String("target_lang", targetLang),
			slog.String("error", err.Error()),
		)
		s.record(ctx, start, "upstream_error")
		return "", apierrors.ErrTranslationFailed
	}

	s.logger.InfoContext(ctx, "translation completed",
		slog.String("user", userID),
		slog.String("target_lang", targetLang),
		slog.String("license_reason", string(decision.Reason)),
		slog.Int("chars", len(text)),
	)
	s.record(ctx, start, "ok")
	return translated, nil
}

func (s *translationService) record(ctx context.Context, start time.Time, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.TranslationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	s.metrics.TranslationDuration.Record(ctx, time.Since(start).Seconds())
}
