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

// TranslateRequest is the body of POST /api/translate
type TranslateRequest struct {
	Text       string `json:"text" validate:"required,max=30000"`
	TargetLang string `json:"target_lang" validate:"required,min=2,max=10"`
}

// TranslateResponse carries the translated text back to the client
type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// TranslateHandler handles license-gated translation requests
type TranslateHandler struct {
	service      services.TranslationService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTranslateHandler creates a new translate handler
func NewTranslateHandler(service services.TranslationService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TranslateHandler {
	return &TranslateHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "translate")),
		errorHandler: errorHandler,
	}
}

// Routes returns the translate routes
func (h *TranslateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Translate)
	return r
}

// Translate handles POST /api/translate
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	var req TranslateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	translated, err := h.service.Translate(r.Context(), identity.Key(), req.Text, req.TargetLang)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, TranslateResponse{TranslatedText: translated})
}
