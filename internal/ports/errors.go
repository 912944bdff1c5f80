package ports

import "errors"

// Error taxonomy shared by collaborators. Auth failures surface directly
// to the user and are never retried; store failures are reported and the
// caller's input is preserved for resubmission.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrStoreUnavailable    = errors.New("document store unavailable")
	ErrSubscriptionClosed  = errors.New("subscription closed")
)
