package auth

import (
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// AuthorizeMutation decides whether the claim's principal may mutate a
// resource owned by ownerID. It is a pure comparison: the caller fetches the
// owning id from storage first, and the final write must repeat the same
// predicate (WHERE id = ? AND owner_id = ?) so no window opens between the
// check and the mutation.
func AuthorizeMutation(claims Claims, ownerID int64) error {
	if claims.PrincipalID != ownerID {
		return domain.ErrNotOwner
	}
	return nil
}
