package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/neomorfeo/venuedir/internal/domain"
)

// APIError is the error body every endpoint returns: {error, code}.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error" doc:"Human readable message"`
	Code    string `json:"code" doc:"Stable machine readable code"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.Status }

func toHumaError(ctx context.Context, err error) error {
	code := domain.CodeOf(err)
	switch code {
	case domain.CodeValidation, domain.CodeBusinessRule, domain.CodeConflict, domain.CodeTransition:
		return &APIError{Status: http.StatusBadRequest, Message: err.Error(), Code: string(code)}
	case domain.CodeUnauthorized:
		return &APIError{Status: http.StatusUnauthorized, Message: domain.ErrUnauthenticated.Error(), Code: string(code)}
	case domain.CodeForbidden:
		return &APIError{Status: http.StatusForbidden, Message: err.Error(), Code: string(code)}
	case domain.CodeNotFound:
		return &APIError{Status: http.StatusNotFound, Message: err.Error(), Code: string(code)}
	}
	slog.ErrorContext(ctx, "request failed", "code", code, "error", err)
	return &APIError{Status: http.StatusInternalServerError, Message: "internal server error", Code: string(code)}
}
