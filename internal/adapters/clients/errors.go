// Package clients provides the instrumented HTTP client used to reach the
// quiz backend.
package clients

import "errors"

// Infrastructure failures. The acl package translates them into domain errors.
var (
	// ErrCircuitOpen is returned without contacting the backend while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last transport error once every
	// configured attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
