package approval

import "errors"

var (
	// ErrNotFound means the target profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidState means the target is not pending, including the
	// case where a concurrent request resolved it first.
	ErrInvalidState = errors.New("profile is not pending approval")

	// ErrForbidden means the engine denied the caller. Handlers must
	// map this to a generic message that does not reveal which
	// memberships or privileges were inspected.
	ErrForbidden = errors.New("not authorized")
)
