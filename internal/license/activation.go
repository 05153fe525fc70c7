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

// PlaceholderUser is recorded on a transaction whose order could not be
// resolved to a user. The payment is still logged; activation is skipped.
const PlaceholderUser = "unknown"

// TransactionStatusDone marks a gateway-confirmed payment
const TransactionStatusDone = "DONE"

// Activator flips a user's record to a paid subscription after the
// payment gateway has confirmed the order. It also creates the
// pending-order records that later let confirmation find the user without
// decoding the order string.
type Activator struct {
	store   store.Store
	cfg     config.LicenseConfig
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	clock   func() time.Time
}

// ActivatorOption customizes an Activator
type ActivatorOption func(*Activator)

// WithActivatorClock overrides the activator's clock, for tests
func WithActivatorClock(clock func() time.Time) ActivatorOption {
	return func(a *Activator) {
		a.clock = clock
	}
}

// WithActivatorMetrics attaches domain metrics to the activator
func WithActivatorMetrics(m *infrastructure.BusinessMetrics) ActivatorOption {
	return func(a *Activator) {
		a.metrics = m
	}
}

// NewActivator creates an activator over the given store
func NewActivator(st store.Store, cfg config.LicenseConfig, logger *slog.Logger, opts ...ActivatorOption) *Activator {
	a := &Activator{
		store:  st,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "license_activator")),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateOrder allocates an order ID for the user and persists the pending
// order so confirmation can resolve the user server-side.
func (a *Activator) CreateOrder(ctx context.Context, userID string, amount int64) (string, error) {
	orderID := NewOrderID(userID, a.clock())

	err := a.store.PutPendingOrder(ctx, &store.PendingOrder{
		OrderID: orderID,
		User:    userID,
		Amount:  amount,
	})
	if err != nil {
		return "", err
	}

	a.logger.InfoContext(ctx, "pending order created",
		slog.String("order_id", orderID),
		slog.String("user", userID),
		slog.Int64("amount", amount),
	)
	return orderID, nil
}

// Activate records the confirmed payment and activates the user's
// subscription. The transaction is written even when the order cannot be
// resolved to a user; in that degraded case activation is skipped and the
// generated license key is still returned so the paying client gets it.
func (a *Activator) Activate(ctx context.Context, paymentKey, orderID string, amount int64) (string, error) {
	user := a.resolveUser(ctx, orderID)
	licenseKey := NewLicenseKey(a.clock())
	plan := a.PlanFor(amount)

	txUser := user
	if txUser == "" {
		txUser = PlaceholderUser
	}

	err := a.store.PutTransaction(ctx, &store.TransactionRecord{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
		Status:     TransactionStatusDone,
		LicenseKey: licenseKey,
		User:       txUser,
	})
	if err != nil {
		return "", err
	}

	if user == "" {
		a.logger.WarnContext(ctx, "order not resolvable to a user, activation skipped",
			slog.String("order_id", orderID),
		)
		return licenseKey, nil
	}

	if err := a.store.ActivateUser(ctx, user, plan, licenseKey); err != nil {
		return "", err
	}

	a.logger.InfoContext(ctx, "subscription activated",
		slog.String("user", user),
		slog.String("order_id", orderID),
		slog.String("plan", plan),
	)
	if a.metrics != nil {
		a.metrics.ActivationsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("plan", plan),
		))
	}
	return licenseKey, nil
}

// PlanFor derives the plan label from the paid amount in currency minor
// units. Threshold and labels are configuration.
func (a *Activator) PlanFor(amount int64) string {
	if amount >= a.cfg.LabThreshold {
		return a.cfg.LabPlan
	}
	return a.cfg.PersonalPlan
}

// resolveUser finds the user behind an order: the pending-order record
// first, then the legacy encoding inside the order ID. Empty means
// unresolvable.
func (a *Activator) resolveUser(ctx context.Context, orderID string) string {
	order, err := a.store.GetPendingOrder(ctx, orderID)
	if err == nil {
		return order.User
	}
	if !errors.Is(err, store.ErrNotFound) {
		a.logger.WarnContext(ctx, "pending order lookup failed, falling back to order id decoding",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if user, ok := ParseOrderID(orderID); ok {
		return user
	}
	return ""
}
