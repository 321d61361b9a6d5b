package domain

import "errors"

// Token verification failures. Malformed and bad-signature are distinct
// internally (logs, metrics) but must be indistinguishable to clients.
var (
	ErrTokenMissing          = errors.New("token missing")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Authorization failures.
var (
	ErrRoleMismatch = errors.New("role mismatch")
	ErrNotOwner     = errors.New("principal does not own resource")
)

// Account and credential failures. ErrInvalidCredentials deliberately covers
// both unknown email and wrong password so login responses cannot be used to
// enumerate registered emails.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// Store failures. Conditional mutations collapse "not found" and "owned by
// someone else" into ErrStoreNotFound so non-owners learn nothing.
var (
	ErrStoreNotFound = errors.New("store not found")
	ErrPhotoNotFound = errors.New("store photo not found")
	ErrNoChanges     = errors.New("no fields to update")
)
