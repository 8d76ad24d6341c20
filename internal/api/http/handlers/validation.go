package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// Shared validator instance, reused across handlers.
var validate = validator.New()

// validateRequest validates a request struct and converts the first field
// failure into a 400 validation error.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		return apperrors.NewValidationError(
			fmt.Sprintf("%s %s", fe.Field(), formatValidationError(fe)),
			map[string]any{"field": fe.Field()},
		)
	}
	return apperrors.NewValidationError("invalid payload", nil)
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
