package errors

import "errors"

// Sentinel errors shared across the application. Services return these (or
// wrap them with %w) instead of HTTP status codes; the API layer translates
// them with errors.Is, keeping business logic decoupled from transport.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed validation. The
	// wrapped message carries the per-field detail. Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrBadRequest signifies a request body that could not be parsed at all
	// (malformed JSON). Distinct from ErrValidation so the client can tell a
	// broken payload from a well-formed but invalid one. Mapped to 400.
	ErrBadRequest = errors.New("malformed request")

	// ErrProviderUnavailable signifies that the model provider kept failing
	// past the fallback path. This is the one unrecoverable degradation.
	// Mapped to 502 Bad Gateway.
	ErrProviderUnavailable = errors.New("model provider unavailable")

	// ErrInternal signifies an unexpected server-side failure. Used to avoid
	// leaking implementation detail to the client. Mapped to 500.
	ErrInternal = errors.New("internal server error")
)
