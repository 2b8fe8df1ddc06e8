package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("product_region", func(fl validator.FieldLevel) bool {
		return domain.Region(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("viewer_region", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseViewerRegion(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return catalog.IsKnownCategory(fl.Field().String())
	})
	return v
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var result []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			result = append(result, ValidationError{
				Field:   fieldPath(e),
				Message: getErrorMessage(e),
			})
		}
	}

	return result
}

// wrapperField is the untagged payload field of optional-value wrappers.
// It never appears in JSON, so it is elided from reported paths.
const wrapperField = "Value"

// fieldPath drops the root struct name from the namespace, so nested
// fields read as price.india.
func fieldPath(e validator.FieldError) string {
	parts := strings.Split(e.Namespace(), ".")
	if len(parts) < 2 {
		return e.Field()
	}
	kept := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p != wrapperField {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url", "http_url":
		return "Must be an http(s) URL"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "product_region":
		return "Must be one of global, india, both"
	case "viewer_region":
		return "Must be one of global, india"
	case "category":
		return fmt.Sprintf("Unknown category %q", e.Value())
	default:
		return "Invalid value"
	}
}
