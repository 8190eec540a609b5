package shared

import "errors"

// Sentinel errors for the lifecycle services. Handlers map these to HTTP
// statuses in platform/httpx; services wrap them with context via %w.
var (
	// ErrNotFound indicates a referenced aggregate does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an operation illegal in the current state.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the caller lacks ownership or role.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
