package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

// msgInternal is the only message clients see for unexpected failures.
const msgInternal = "internal server error"

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"message" doc:"Human-readable error message"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var (
			fieldErrs []*huma.ErrorDetail
			causes    []error
		)
		for _, err := range errs {
			if err == nil {
				continue
			}

			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				if domainErr.HTTPStatus() >= 500 && domainErr.Code != domainerrors.CodeUpstreamUnavailable {
					logUnexpected(logger, err)
					return &APIError{status: domainErr.HTTPStatus(), Code: string(domainErr.Code), Message: msgInternal}
				}
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				fieldErrs = append(fieldErrs, detail)
				continue
			}
			causes = append(causes, err)
		}

		// huma reports malformed requests as 422; clients of this API get 400.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			return validationError(message, fieldErrs)
		}

		if status >= 500 {
			logUnexpected(logger, errors.Join(causes...))
			return &APIError{status: status, Code: string(domainerrors.CodeInternal), Message: msgInternal}
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

func validationError(message string, details []*huma.ErrorDetail) *APIError {
	out := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}
	if len(details) == 0 {
		return out
	}

	fields := make(map[string]string, len(details))
	for _, d := range details {
		fields[d.Location] = d.Message
	}
	out.Details = fields

	// The first problem becomes the headline so {message} alone is useful.
	first := details[0]
	out.Message = first.Location + ": " + first.Message
	return out
}

func logUnexpected(logger *slog.Logger, err error) {
	if logger != nil && err != nil {
		logger.Error("unexpected error", "error", err)
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
