package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Common problem types following RFC 7807
const (
	TypeValidation   = "/errors/validation"
	TypeNotFound     = "/errors/not-found"
	TypeUnauthorized = "/errors/unauthorized"
	TypeForbidden    = "/errors/forbidden"
	TypeRateLimit    = "/errors/rate-limit"
	TypeInternal     = "/errors/internal"
	TypeServiceDown  = "/errors/service-unavailable"
	TypeTimeout      = "/errors/timeout"
)

// Domain-specific problem types
const (
	TypeAuthMissingToken  = "/errors/auth/missing-token"
	TypeAuthInvalidToken  = "/errors/auth/invalid-token"
	TypeLicenseDenied     = "/errors/license/denied"
	TypeStoreUnavailable  = "/errors/store/unavailable"
	TypePaymentRejected   = "/errors/payment/verification-failed"
	TypeTranslationFailed = "/errors/translation/failed"
)

// ProblemDetails implements RFC 7807 problem responses
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{
		"type":   pd.Type,
		"title":  pd.Title,
		"status": pd.Status,
	}
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}

// NewProblemDetails creates an RFC 7807 problem
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// NewLicenseDeniedProblem is the response for a metered operation the
// evaluator refused. The detail string is safe to show to end users.
func NewLicenseDeniedProblem(instance, traceID string) *ProblemDetails {
	return NewProblemDetails(
		http.StatusForbidden,
		TypeLicenseDenied,
		"License Denied",
		"License invalid or trial expired. Please purchase a plan.",
		instance,
	).WithExtension("trace_id", traceID)
}

// NewPaymentRejectedProblem is the response for a gateway-rejected payment
func NewPaymentRejectedProblem(instance, reason, traceID string) *ProblemDetails {
	return NewProblemDetails(
		http.StatusBadRequest,
		TypePaymentRejected,
		"Payment Verification Failed",
		reason,
		instance,
	).WithExtension("trace_id", traceID)
}
