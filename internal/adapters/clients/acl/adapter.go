package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quizboard/internal/adapters/clients"
	"github.com/jsamuelsen/quizboard/internal/domain"
)

// BaseAdapter carries the client and error mapping shared by backend adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter named after the client's service.
func NewBaseAdapter(client *clients.Client) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: client.ServiceName(),
	}
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// call fills in the service name.
func (a *BaseAdapter) call(operation, entity, id string) Call {
	return Call{Service: a.serviceName, Operation: operation, Entity: entity, EntityID: id}
}

// Do runs send and maps failures. On success the caller owns the returned
// body and must close it.
func (a *BaseAdapter) Do(
	ctx context.Context,
	call Call,
	send func(ctx context.Context) (*http.Response, error),
) (io.ReadCloser, error) {
	resp, err := send(ctx)
	if err != nil {
		return nil, MapHTTPError(nil, err, call)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer closeQuietly(resp.Body)

		return nil, MapHTTPError(resp, nil, call)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
// Decode failures, including a bare null, are mapped with MapDecodeError.
func DecodeResponse[T any](body io.ReadCloser, call Call) (T, error) {
	var result T

	if body == nil {
		return result, MapDecodeError(errors.New("response body is nil"), call)
	}
	defer closeQuietly(body)

	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return result, MapDecodeError(err, call)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return result, MapDecodeError(errNullBody, call)
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, MapDecodeError(err, call)
	}

	return result, nil
}

var errNullBody = errors.New("response body is null")

// EncodeBody marshals v into a rewindable request body.
func EncodeBody(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return bytes.NewReader(data), nil
}

// ValidateRequired checks that a required field is not empty.
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}

// closeQuietly drains and closes body so the connection can be reused.
func closeQuietly(body io.ReadCloser) {
	if body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	_ = body.Close()
}
