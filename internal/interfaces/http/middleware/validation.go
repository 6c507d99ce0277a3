package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const minTrackingLength = 3

// SetupValidator registers json field naming and the custom tags on gin's validator
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return v.RegisterValidation("tracking", validateTrackingNumber)
}

// validateTrackingNumber accepts carrier tracking numbers: at least three
// significant characters, no surrounding or embedded whitespace.
func validateTrackingNumber(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < minTrackingLength || strings.TrimSpace(s) != s {
		return false
	}
	return !strings.ContainsFunc(s, unicode.IsSpace)
}

// ValidationResponse converts a binding error into the error envelope.
// Non-validator errors (malformed JSON, wrong types) become BAD_REQUEST.
func ValidationResponse(err error, requestID string) dto.Response {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.Fail(dto.ErrCodeBadRequest, "malformed request body", requestID)
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return dto.Invalid("request validation failed", requestID, details)
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "tracking":
		return fmt.Sprintf("must be a tracking number of at least %d characters without spaces", minTrackingLength)
	default:
		return "failed " + e.Tag() + " validation"
	}
}
