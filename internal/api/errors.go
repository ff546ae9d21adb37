package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/phrazzld/vocab-drill/internal/task"
)

// MapErrorToStatusCode maps engine errors to HTTP status codes without
// leaking their text to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, drill.ErrEmptyTier),
		errors.Is(err, drill.ErrErrorQueueEmpty):
		return http.StatusNotFound

	case errors.Is(err, drill.ErrErrorQueueCleared):
		return http.StatusGone

	case errors.Is(err, drill.ErrSessionNotLoaded),
		errors.Is(err, drill.ErrNoPendingWord):
		return http.StatusConflict

	case errors.Is(err, domain.ErrEmptyTierName),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, drill.ErrStoreUnavailable),
		errors.Is(err, store.ErrUnavailable),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the user-facing message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, drill.ErrEmptyTier):
		return "nothing to learn here"
	case errors.Is(err, drill.ErrErrorQueueEmpty):
		return "no words to correct"
	case errors.Is(err, drill.ErrErrorQueueCleared):
		return "all mistakes corrected"
	case errors.Is(err, drill.ErrSessionNotLoaded):
		return "no active session"
	case errors.Is(err, drill.ErrNoPendingWord):
		return "no word pending, fetch a prompt first"
	case errors.Is(err, domain.ErrEmptyTierName):
		return "tier is required"
	case errors.Is(err, domain.ErrInvalidMode):
		return "invalid session mode"
	case errors.Is(err, domain.ErrValidation):
		return "invalid request"
	case errors.Is(err, drill.ErrStoreUnavailable),
		errors.Is(err, store.ErrUnavailable),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "try again"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
