package auth

import "errors"

// Error taxonomy for the credential and authorization core. Handlers map
// these sentinels to transport codes; the core never renders a response.
var (
	// ErrUnauthenticated covers missing credentials and any codec or
	// lookup failure. Internal distinctions (expired, malformed, wrong
	// type) are not leaked to callers.
	ErrUnauthenticated = errors.New("invalid or missing credential")

	// ErrForbidden means the credential is valid but lacks the required
	// scope, permission or ownership.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNotFound covers ids that do not exist and ids that exist outside
	// the caller's scope, so existence is never confirmed to unauthorized
	// callers.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed input to a credential operation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers uniqueness violations such as a token hash
	// collision on create.
	ErrConflict = errors.New("conflict")
)
