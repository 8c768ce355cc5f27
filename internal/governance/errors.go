package governance

import "errors"

// Error taxonomy of the governance engine. None of these are transient; the
// caller must correct the request.
var (
	// ErrUnauthenticated is returned when no identity is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrUserNotFound is returned when the identity does not map to a known
	// platform user.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when the caller is authenticated but lacks the
	// editor role required to approve or reject evolutions.
	ErrForbidden = errors.New("must be an editor to process evolutions")

	// ErrNotFound is returned when the referenced evolution does not exist.
	ErrNotFound = errors.New("evolution not found")

	// ErrAlreadyProcessed is returned when approving or rejecting an
	// evolution that is no longer pending.
	ErrAlreadyProcessed = errors.New("evolution already processed")

	// ErrInvalidCategory is returned when the category is unknown or the
	// override payload does not match it.
	ErrInvalidCategory = errors.New("invalid evolution category")
)
