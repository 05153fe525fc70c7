package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "lingogate/internal/errors"
	"lingogate/internal/middleware"
	"lingogate/internal/services"
)

// CreateOrderRequest is the body of POST /api/orders
type CreateOrderRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CreateOrderResponse returns the allocated order ID
type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

// ConfirmPaymentRequest is the body of POST /api/payments/confirm
type ConfirmPaymentRequest struct {
	PaymentKey string `json:"payment_key" validate:"required"`
	OrderID    string `json:"order_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

// ConfirmPaymentResponse is the activation outcome for the paying client
type ConfirmPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Key     string `json:"key"`
	Plan    string `json:"plan"`
}

// PaymentHandler handles order creation and payment confirmation
type PaymentHandler struct {
	service      services.PaymentService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service services.PaymentService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PaymentHandler {
	return &PaymentHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "payment")),
		errorHandler: errorHandler,
	}
}

// Routes returns the payment confirmation routes. The confirm endpoint is
// unauthenticated: the payment widget's success redirect calls it without
// an identity token, and the order resolves the user server-side.
func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/confirm", h.Confirm)
	return r
}

// CreateOrder handles POST /api/orders
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	orderID, err := h.service.CreateOrder(r.Context(), identity.Key(), req.Amount)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreateOrderResponse{OrderID: orderID})
}

// Confirm handles POST /api/payments/confirm
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), req.PaymentKey, req.OrderID, req.Amount)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, ConfirmPaymentResponse{
		Status:  "success",
		Message: "Payment confirmed and license activated",
		Key:     result.LicenseKey,
		Plan:    result.Plan,
	})
}
