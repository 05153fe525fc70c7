package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lingogate/internal/config"
)

// Confirmation is the gateway's view of a confirmed payment
type Confirmation struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	ApprovedAt string `json:"approvedAt"`
}

// GatewayError is a rejection from the payment gateway. Its message is
// safe to relay to the paying client.
type GatewayError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway rejected: %s (%s)", e.Message, e.Code)
}

// TossClient confirms payments against the Toss Payments API. The gateway
// response is ground truth; there are no retries.
type TossClient struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTossClient creates a gateway client with a bounded request timeout
func NewTossClient(cfg config.PaymentsConfig, logger *slog.Logger) *TossClient {
	encoded := base64.StdEncoding.EncodeToString([]byte(cfg.SecretKey + ":"))

	return &TossClient{
		baseURL:    cfg.BaseURL,
		authHeader: "Basic " + encoded,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "toss_client")),
	}
}

// Confirm verifies the payment out-of-band. A non-2xx gateway response is
// returned as a *GatewayError.
func (c *TossClient) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*Confirmation, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     amount,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal confirm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payments/confirm", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build confirm request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gatewayErr := &GatewayError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, gatewayErr); err != nil || gatewayErr.Message == "" {
			gatewayErr.Message = "Payment verification failed"
		}
		c.logger.WarnContext(ctx, "payment verification rejected",
			slog.String("order_id", orderID),
			slog.Int("status", resp.StatusCode),
			slog.String("code", gatewayErr.Code),
		)
		return nil, gatewayErr
	}

	var confirmation Confirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &confirmation, nil
}
