package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quizboard/internal/adapters/clients"
	"github.com/jsamuelsen/quizboard/internal/domain"
)

// maxErrorBody caps how much of an error response is read for a message.
const maxErrorBody = 64 << 10

// Call describes one backend request for error translation.
type Call struct {
	// Service is the downstream service name, such as "quiz-backend".
	Service string

	// Operation is a short verb phrase, such as "update quiz".
	Operation string

	// Entity and EntityID name the addressed resource for not-found errors.
	Entity   string
	EntityID string
}

// ErrorResponse is an error body from the backend. Both a nested
// {"error":{"message":...}} and a flat {"message":...} shape are accepted.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested form of ErrorResponse.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetMessage returns the error message from either nested or top-level format.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse decodes an error body, returning nil when the body is
// empty, not JSON, or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" && errResp.Code == "" && errResp.Error.Code == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError translates a failed backend call into a domain error.
// clientErr takes precedence; otherwise resp must be a non-2xx response.
// A 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, call Call) error {
	if clientErr != nil {
		return mapClientError(clientErr, call)
	}

	if resp == nil {
		return domain.NewUnavailableError(call.Service, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return mapStatusCode(resp.StatusCode, ParseErrorResponse(resp.Body), call)
}

// MapDecodeError translates an undecodable success body. The backend broke
// its contract, so the call counts as the service being unavailable.
func MapDecodeError(err error, call Call) error {
	return domain.NewUnavailableError(call.Service,
		fmt.Sprintf("malformed %s response: %v", call.Operation, err))
}

func mapClientError(err error, call Call) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", call.Operation, err)

	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(call.Service,
			fmt.Sprintf("circuit breaker open during %s", call.Operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(call.Service,
			fmt.Sprintf("max retries exceeded during %s", call.Operation))

	default:
		return domain.NewUnavailableError(call.Service,
			fmt.Sprintf("%s failed: %v", call.Operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, call Call) error {
	message := defaultMessageForStatus(status, call.Operation)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch status {
	case http.StatusNotFound:
		entity := call.Entity
		if entity == "" {
			entity = call.Service
		}

		return domain.NewNotFoundError(entity, call.EntityID)

	case http.StatusConflict:
		return domain.NewConflictError(call.Entity, message)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if errResp != nil {
			for field, msg := range errResp.Error.Details {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)

	case http.StatusForbidden:
		return domain.NewForbiddenError(call.Operation, message)

	case http.StatusUnauthorized:
		return domain.NewForbiddenError(call.Operation, "authentication required")

	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(call.Service, "rate limit exceeded")

	default:
		if status >= http.StatusInternalServerError {
			return domain.NewUnavailableError(call.Service, message)
		}

		return domain.NewValidationError("", message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
