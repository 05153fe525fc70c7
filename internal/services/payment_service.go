package services

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	apierrors "lingogate/internal/errors"
	"lingogate/internal/infrastructure"
	"lingogate/internal/license"
	"lingogate/internal/payments"
)

// Gateway is the outbound payment verification contract. Production is
// the Toss client; tests substitute a stub.
type Gateway interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*payments.Confirmation, error)
}

// ActivationResult is returned to the client that completed payment
type ActivationResult struct {
	LicenseKey string
	Plan       string
}

// PaymentService verifies payments and activates subscriptions
type PaymentService interface {
	// CreateOrder allocates an order for the user before payment.
	CreateOrder(ctx context.Context, userID string, amount int64) (string, error)

	// ConfirmPayment verifies the payment with the gateway and, on
	// success, records the transaction and activates the subscription.
	ConfirmPayment(ctx context.Context, paymentKey, orderID string, amount int64) (*ActivationResult, error)
}

// paymentService implements PaymentService
type paymentService struct {
	gateway   Gateway
	activator *license.Activator
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
}

// NewPaymentService creates the payment confirmation service
func NewPaymentService(gateway Gateway, activator *license.Activator, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) PaymentService {
	return &paymentService{
		gateway:   gateway,
		activator: activator,
		logger:    logger.With(slog.String("service", "payment")),
		metrics:   metrics,
	}
}

// CreateOrder allocates an order ID and persists the pending order
func (s *paymentService) CreateOrder(ctx context.Context, userID string, amount int64) (string, error) {
	orderID, err := s.activator.CreateOrder(ctx, userID, amount)
	if err != nil {
		s.logger.ErrorContext(ctx, "pending order write failed",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return "", apierrors.ErrStoreUnavailable
	}
	return orderID, nil
}

// ConfirmPayment trusts the gateway's verdict as ground truth. A gateway
// rejection surfaces its reason to the paying client; gateway transport
// failures and store failures stay generic.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentKey, orderID string, amount int64) (*ActivationResult, error) {
	if _, err := s.gateway.Confirm(ctx, paymentKey, orderID, amount); err != nil {
		if s.metrics != nil {
			s.metrics.PaymentFailures.Add(ctx, 1, metric.WithAttributes())
		}

		var gatewayErr *payments.GatewayError
		if errors.As(err, &gatewayErr) {
			return nil, apierrors.PaymentRejectedWithReason(gatewayErr.Message)
		}

		s.logger.ErrorContext(ctx, "payment gateway unreachable",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return nil, apierrors.ErrPaymentRejected
	}

	licenseKey, err := s.activator.Activate(ctx, paymentKey, orderID, amount)
	if err != nil {
		s.logger.ErrorContext(ctx, "activation write failed after confirmed payment",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return nil, apierrors.ErrStoreUnavailable
	}

	return &ActivationResult{
		LicenseKey: licenseKey,
		Plan:       s.activator.PlanFor(amount),
	}, nil
}
