package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// Issuer mints session tokens for authenticated principals. Issuance has no
// side effects: it never touches storage.
type Issuer struct {
	codec *Codec
	cfg   Config
	clock Clock
}

// NewIssuer returns an Issuer. A non-positive TTL falls back to DefaultTTL.
func NewIssuer(codec *Codec, cfg Config, clock Clock) *Issuer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Issuer{codec: codec, cfg: cfg, clock: clock}
}

// Issue builds a claim for the principal and signs it. The name is a display
// convenience carried in the token; it has no security weight.
func (i *Issuer) Issue(p domain.Principal, name string) (string, Claims, error) {
	now := i.clock()
	claims := Claims{
		PrincipalID: p.ID,
		Role:        p.Role,
		Name:        name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}
	token, err := i.codec.Encode(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}
