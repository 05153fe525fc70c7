package license

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"lingogate/internal/config"
	"lingogate/internal/infrastructure"
	"lingogate/internal/store"
)

// Reason explains an evaluator decision
type Reason string

const (
	// ReasonProvisioned: unseen user, record created with the default
	// free allowance
	ReasonProvisioned Reason = "trial_started"
	// ReasonSubscription: paid subscription, metering bypassed
	ReasonSubscription Reason = "subscription"
	// ReasonTrialWindow: inside the trial window, no credit spent
	ReasonTrialWindow Reason = "trial_window"
	// ReasonCreditSpent: one credit atomically decremented
	ReasonCreditSpent Reason = "credit_spent"
	// ReasonExhausted: trial over and no credits left
	ReasonExhausted Reason = "exhausted"
	// ReasonEnforcementOff: gate disabled by configuration
	ReasonEnforcementOff Reason = "enforcement_disabled"
	// ReasonStoreError: the store failed and enforcement denies
	ReasonStoreError Reason = "store_error"
)

// Decision is the outcome of a license evaluation
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Evaluator decides whether a user may perform a metered operation.
// The policy, evaluated in order: provision unseen users with the default
// trial state and allow; allow active subscriptions; allow inside the
// trial window; otherwise spend a credit if one remains; deny.
//
// With enforcement disabled every call is allowed and the store is never
// consulted. With enforcement enabled a store failure denies the request
// but never panics.
type Evaluator struct {
	store   store.Store
	cfg     config.LicenseConfig
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	clock   func() time.Time
}

// EvaluatorOption customizes an Evaluator
type EvaluatorOption func(*Evaluator)

// WithClock overrides the evaluator's clock, for tests
func WithClock(clock func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.clock = clock
	}
}

// WithMetrics attaches domain metrics to the evaluator
func WithMetrics(m *infrastructure.BusinessMetrics) EvaluatorOption {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// NewEvaluator creates a license evaluator over the given store
func NewEvaluator(st store.Store, cfg config.LicenseConfig, logger *slog.Logger, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		store:  st,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "license_evaluator")),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate applies the decision policy for userID. The returned error is
// diagnostic only: when it is non-nil the decision is always a denial, and
// the caller must not crash the request.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) (Decision, error) {
	if !e.cfg.Enforcement {
		return e.record(ctx, Decision{Allowed: true, Reason: ReasonEnforcementOff}), nil
	}

	rec, err := e.store.GetUser(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return e.provision(ctx, userID)
	case err != nil:
		e.logger.ErrorContext(ctx, "license check failed, denying",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return e.record(ctx, Decision{Reason: ReasonStoreError}), err
	}

	if rec.Status == store.StatusActive {
		return e.record(ctx, Decision{Allowed: true, Reason: ReasonSubscription}), nil
	}

	if rec.Status == store.StatusTrial && !rec.TrialStartedAt.IsZero() {
		if elapsedDays(e.clock(), rec.TrialStartedAt) <= e.cfg.TrialDays {
			return e.record(ctx, Decision{Allowed: true, Reason: ReasonTrialWindow}), nil
		}
	}

	spent, err := e.store.SpendCredit(ctx, userID)
	if err != nil {
		e.logger.ErrorContext(ctx, "credit spend failed, denying",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return e.record(ctx, Decision{Reason: ReasonStoreError}), err
	}
	if spent {
		return e.record(ctx, Decision{Allowed: true, Reason: ReasonCreditSpent}), nil
	}
	return e.record(ctx, Decision{Reason: ReasonExhausted}), nil
}

// provision creates the record for a first-time user and allows the call.
// Losing the create race to a concurrent request still allows: the record
// exists and the user is on a fresh allowance either way.
func (e *Evaluator) provision(ctx context.Context, userID string) (Decision, error) {
	rec := &store.UserRecord{
		Email:          userID,
		Status:         store.StatusTrial,
		Credits:        e.cfg.StartingCredits,
		TrialStartedAt: e.clock(),
	}

	err := e.store.CreateUser(ctx, userID, rec)
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		e.logger.ErrorContext(ctx, "user provisioning failed, denying",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return e.record(ctx, Decision{Reason: ReasonStoreError}), err
	}

	e.logger.InfoContext(ctx, "new user provisioned with trial allowance",
		slog.String("user", userID),
		slog.Int("trial_days", e.cfg.TrialDays),
		slog.Int64("starting_credits", e.cfg.StartingCredits),
	)
	if e.metrics != nil {
		e.metrics.UsersProvisioned.Add(ctx, 1)
	}
	return e.record(ctx, Decision{Allowed: true, Reason: ReasonProvisioned}), nil
}

// record emits the decision metric and returns the decision unchanged
func (e *Evaluator) record(ctx context.Context, d Decision) Decision {
	if e.metrics != nil {
		e.metrics.LicenseDecisions.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("allowed", d.Allowed),
			attribute.String("reason", string(d.Reason)),
		))
	}
	return d
}

// elapsedDays returns the number of whole days between start and now,
// rounded up. Day five of a five-day trial is still inside the window.
func elapsedDays(now, start time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
