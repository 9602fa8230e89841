package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"example.com/runtracker/internal/domain"
)

// ErrorResponse is the structured error body: a status code, a kind label,
// and per-field details where available.
type ErrorResponse struct {
	ErrorCode    int            `json:"error_code"`
	ErrorMessage string         `json:"error_message"`
	ErrorDetails []ErrorDetails `json:"error_details,omitempty"`
}

// ErrorDetails carries one rejected field or rule.
type ErrorDetails struct {
	Message       string `json:"message,omitempty"`
	FieldName     string `json:"field_name,omitempty"`
	RejectedValue string `json:"rejected_value,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string, details ...ErrorDetails) {
	writeJSON(w, status, ErrorResponse{
		ErrorCode:    status,
		ErrorMessage: message,
		ErrorDetails: details,
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		writeError(w, http.StatusBadRequest, "Validation failed", ErrorDetails{Message: err.Error()})
		return
	}

	details := make([]ErrorDetails, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, ErrorDetails{
			Message:       validationMessage(fieldError),
			FieldName:     fieldError.Field(),
			RejectedValue: fmt.Sprintf("%v", fieldError.Value()),
		})
	}
	writeError(w, http.StatusBadRequest, "Validation failed", details...)
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' must be filled", fieldError.Field())
	case "datetime":
		return fmt.Sprintf("Field '%s' must be a date in format %s", fieldError.Field(), fieldError.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fieldError.Field(), fieldError.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", fieldError.Field(), fieldError.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", fieldError.Field(), fieldError.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fieldError.Field())
	}
}

// writeDomainError maps domain failures onto HTTP statuses: missing users
// to 404, broken business rules to 400, anything else to a generic 500
// whose detail stays in the logs.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var businessErr *domain.BusinessRuleError
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Data not found", ErrorDetails{Message: err.Error()})
	case errors.As(err, &businessErr):
		writeError(w, http.StatusBadRequest, "Business logic exception", ErrorDetails{Message: businessErr.Reason})
	default:
		logError(r, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
