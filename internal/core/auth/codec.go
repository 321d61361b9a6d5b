package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// Codec signs and parses session tokens with HS256 over a process-wide
// secret. Decode failures map onto the closed set of domain token errors so
// the HTTP layer can translate them without inspecting jwt internals.
type Codec struct {
	secret []byte
	clock  Clock
}

// NewCodec builds a Codec from the signing config. It fails on an empty
// secret: a process without one must refuse to verify anything rather than
// fall back to unsigned tokens.
func NewCodec(cfg Config, clock Clock) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: signing secret is empty")
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Codec{secret: []byte(cfg.Secret), clock: clock}, nil
}

// Encode serializes and signs the claim.
func (c *Codec) Encode(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode parses and validates a token string, checking the signature, the
// signing algorithm and expiry against the injected clock. Errors are one of
// domain.ErrTokenMalformed, domain.ErrTokenSignatureInvalid or
// domain.ErrTokenExpired.
func (c *Codec) Decode(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapDecodeError(err)
	}
	if _, roleErr := domain.ParseRole(claims.Role.String()); roleErr != nil {
		return Claims{}, domain.ErrTokenMalformed
	}
	return claims, nil
}

// mapDecodeError collapses jwt/v5 parse errors onto the domain taxonomy.
// Signature failures win over expiry: jwt joins both errors for a tampered
// token whose mangled payload also happens to fail validation, and a forgery
// must never read as a mere expired session.
func mapDecodeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
