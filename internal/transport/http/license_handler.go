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

// LicenseHandler reports license state to authenticated clients
type LicenseHandler struct {
	service      services.LicenseService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service services.LicenseService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LicenseHandler {
	return &LicenseHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "license")),
		errorHandler: errorHandler,
	}
}

// Routes returns the license routes
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/status", h.Status)
	return r
}

// Status handles GET /api/license/status
func (h *LicenseHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	status, err := h.service.Status(r.Context(), identity.Key())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, status)
}
