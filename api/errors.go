package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, fields []domain.FieldError) {
	c.JSON(status, errorResponse{
		Error:     message,
		Code:      code,
		Fields:    fields,
		RequestID: GetRequestID(c),
	})
}

// statusFor maps a domain error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsConflict(err):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrMissingPrerequisite), errors.Is(err, domain.ErrNoFeeLine):
		return http.StatusUnprocessableEntity, "missing_prerequisite"
	case domain.IsSubmission(err):
		return http.StatusBadGateway, "submission_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// RespondDomainError writes err as JSON. Internal errors are logged and
// replaced with a generic message.
func RespondDomainError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		respondError(c, status, code, "internal error", nil)
		return
	}

	var fields []domain.FieldError
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		fields = verr.Fields
	}
	respondError(c, status, code, err.Error(), fields)
}
