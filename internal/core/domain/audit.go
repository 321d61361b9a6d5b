package domain

import "time"

// AuthEventKind labels an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthEventLoginOK         AuthEventKind = "login_ok"
	AuthEventLoginFailed     AuthEventKind = "login_failed"
	AuthEventRegistered      AuthEventKind = "registered"
	AuthEventPasswordChanged AuthEventKind = "password_changed"
	AuthEventAccountDeleted  AuthEventKind = "account_deleted"
)

// AuthEvent records a single authentication-related action. Events are
// persisted asynchronously; they are observability data, not an input to
// any authorization decision.
type AuthEvent struct {
	Email string        `json:"email"`
	Role  Role          `json:"role"`
	Kind  AuthEventKind `json:"kind"`
	At    time.Time     `json:"at"`
}
