package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"ecommerce-platform/internal/models"

	"github.com/go-playground/validator/v10"
)

// statusFor maps a service error to an HTTP status and a message safe to show
// the caller. Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	var duplicate *models.DuplicateError

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationMessage(validationErrs)
	case errors.As(err, &duplicate):
		return http.StatusConflict, duplicate.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrMissingOwner):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "invalid input"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
