package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "lingogate/internal/errors"
)

const maxBodySize = 1 << 20 // 1MB

// validate is shared across handlers. Error messages carry JSON field
// names, not Go struct field names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads the JSON body into dst and runs struct-tag
// validation. Any failure maps to a 400 APIError.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	if len(body) == 0 {
		return apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", "Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}

	if err := validate.Struct(dst); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apierrors.InvalidRequestWithError(err)
		}
		details := make([]apierrors.ValidationError, 0, len(validationErrs))
		for _, ve := range validationErrs {
			details = append(details, apierrors.ValidationError{
				Field:   ve.Field(),
				Message: formatValidationError(ve),
			})
		}
		return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED",
			"Request validation failed", details)
	}
	return nil
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ve.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", ve.Field(), ve.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", ve.Field(), ve.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", ve.Field(), ve.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", ve.Field(), ve.Tag())
	}
}
