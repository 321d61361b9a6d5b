package auth

import (
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// Verifier validates raw bearer strings. It is transport-agnostic: pulling
// the token out of the Authorization header is the HTTP middleware's job,
// which keeps the verifier directly testable without a request in hand.
type Verifier struct {
	codec *Codec
}

func NewVerifier(codec *Codec) *Verifier {
	return &Verifier{codec: codec}
}

// Verify parses and validates raw. An empty string is domain.ErrTokenMissing;
// everything else fails with one of the codec's decode errors.
func (v *Verifier) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, domain.ErrTokenMissing
	}
	return v.codec.Decode(raw)
}
