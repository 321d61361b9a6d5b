package ports

import (
	"context"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// StoreRepository defines persistence for stores. The conditional mutations
// filter by both store id and owner id in a single write, so the ownership
// predicate cannot be invalidated between a check and the mutation.
type StoreRepository interface {
	// Insert stores a new store and returns its assigned id.
	Insert(ctx context.Context, store *domain.Store) (int64, error)
	// FindByID returns domain.ErrStoreNotFound when absent.
	FindByID(ctx context.Context, id int64) (*domain.Store, error)
	// OwnerOf returns the owning manager id of a store, or
	// domain.ErrStoreNotFound.
	OwnerOf(ctx context.Context, id int64) (int64, error)
	// ListAll returns every store, ordered by name. Public data.
	ListAll(ctx context.Context) ([]*domain.Store, error)
	// ListByOwner returns the stores owned by one manager, ordered by name.
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Store, error)
	// ConditionalUpdate applies changes where id and ownerID both match.
	// Returns domain.ErrStoreNotFound when nothing matched, deliberately not
	// distinguishing a missing store from one owned by someone else.
	ConditionalUpdate(ctx context.Context, id, ownerID int64, changes domain.StoreChanges) error
	// ConditionalDelete removes the store where id and ownerID both match,
	// with the same collapsed not-found-or-forbidden outcome.
	ConditionalDelete(ctx context.Context, id, ownerID int64) error
}

// PhotoStore is the narrow blob-storage collaborator for store profile
// photos.
type PhotoStore interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object bytes and content type, or
	// domain.ErrPhotoNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete removes the object; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
