package ports

import (
	"context"

	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// CreateStoreInput carries the fields a manager supplies when opening a
// store. The owner is always taken from the authenticated claim, never from
// the request body.
type CreateStoreInput struct {
	Name        string
	Description string
	Street      string
	City        string
	State       string
	ZipCode     string
	Latitude    float64
	Longitude   float64
}

// PhotoUpload is an optional profile photo attached to a store update.
type PhotoUpload struct {
	Data        []byte
	ContentType string
	Ext         string
}

// UpdateStoreInput is a partial store update, optionally with a new photo.
type UpdateStoreInput struct {
	Changes domain.StoreChanges
	Photo   *PhotoUpload
}

// StoreService implements store CRUD with ownership enforcement. Mutations
// follow fetch-then-authorize-then-mutate, with the final write repeating
// the ownership predicate.
type StoreService interface {
	Create(ctx context.Context, claims auth.Claims, in CreateStoreInput) (*domain.Store, error)
	Update(ctx context.Context, claims auth.Claims, storeID int64, in UpdateStoreInput) error
	Delete(ctx context.Context, claims auth.Claims, storeID int64) error
	ListAll(ctx context.Context) ([]*domain.Store, error)
	ListOwn(ctx context.Context, claims auth.Claims) ([]*domain.Store, error)
	// Photo returns the store's profile photo bytes and content type.
	Photo(ctx context.Context, storeID int64) ([]byte, string, error)
}
