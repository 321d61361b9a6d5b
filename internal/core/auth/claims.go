// Package auth implements the authentication and authorization core:
// credential hashing, stateless session-token issuance and verification,
// role gating and resource-ownership checks.
//
// The design invariant is that the bearer token is the only session state.
// Verification never touches storage; everything a decision needs is signed
// into the claim at issuance, and validity is bounded entirely by the TTL.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// DefaultTTL is the session lifetime applied when none is configured.
const DefaultTTL = 24 * time.Hour

// Claims is the decoded payload of a session token. Immutable once issued.
// Role is fixed at issuance and never re-read from storage during
// verification.
type Claims struct {
	PrincipalID int64       `json:"principal_id"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the identity the token was issued for.
func (c Claims) Principal() domain.Principal {
	return domain.Principal{ID: c.PrincipalID, Role: c.Role}
}

// Config carries the process-wide signing settings, constructed once at
// startup and injected into the issuer and verifier. An empty secret is a
// fatal configuration error, never a per-request condition.
type Config struct {
	Secret string
	TTL    time.Duration
}
