package auth

import (
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// Guard gates protected operations. The required roles are parameters of
// each call site, never compiled-in constants, and the decoded claim is
// returned as an explicit value instead of being stashed in ambient state.
type Guard struct {
	verifier *Verifier
}

func NewGuard(verifier *Verifier) *Guard {
	return &Guard{verifier: verifier}
}

// Require verifies the token and, when roles are given, checks that the
// claim's role is among them. No roles means any authenticated principal
// passes. The guard performs no I/O.
func (g *Guard) Require(raw string, roles ...domain.Role) (Claims, error) {
	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return Claims{}, err
	}
	if len(roles) == 0 {
		return claims, nil
	}
	for _, r := range roles {
		if claims.Role == r {
			return claims, nil
		}
	}
	return Claims{}, domain.ErrRoleMismatch
}
