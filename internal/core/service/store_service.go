package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feirahub/marketplace-api/internal/api/metrics"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

type storeService struct {
	repo   ports.StoreRepository
	photos ports.PhotoStore
	clock  auth.Clock
	log    zerolog.Logger
}

// NewStoreService returns a StoreService implementation. The photo store may
// be nil, in which case photo uploads are rejected.
func NewStoreService(repo ports.StoreRepository, photos ports.PhotoStore, clock auth.Clock, log zerolog.Logger) ports.StoreService {
	if clock == nil {
		clock = auth.SystemClock
	}
	return &storeService{repo: repo, photos: photos, clock: clock, log: log}
}

func (s *storeService) Create(ctx context.Context, claims auth.Claims, in ports.CreateStoreInput) (*domain.Store, error) {
	store := &domain.Store{
		OwnerID:     claims.PrincipalID,
		Name:        in.Name,
		Description: in.Description,
		Street:      in.Street,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   s.clock(),
	}

	id, err := s.repo.Insert(ctx, store)
	if err != nil {
		return nil, err
	}
	store.ID = id

	s.log.Info().Int64("store_id", id).Int64("manager_id", claims.PrincipalID).Msg("store created")
	return store, nil
}

func (s *storeService) Update(ctx context.Context, claims auth.Claims, storeID int64, in ports.UpdateStoreInput) error {
	// 1. Fetch the current owner and photo key. A missing store is 404 here:
	// store existence is public via the listing endpoint, so nothing leaks.
	current, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	// 2. Authorize against the claim before any side effect.
	if err := auth.AuthorizeMutation(claims, current.OwnerID); err != nil {
		metrics.OwnershipDenialsTotal.WithLabelValues("store_update").Inc()
		return err
	}

	changes := in.Changes

	// 3. Optional photo replacement: upload the new object, then drop the
	// old one. The key embeds the store id so a replaced upload overwrites
	// predictably.
	if in.Photo != nil {
		if s.photos == nil {
			return fmt.Errorf("photo storage not configured")
		}
		key := photoKey(storeID, in.Photo.Ext)
		if err := s.photos.Put(ctx, key, in.Photo.Data, in.Photo.ContentType); err != nil {
			return fmt.Errorf("store photo: %w", err)
		}
		if current.PhotoKey != "" && current.PhotoKey != key {
			if err := s.photos.Delete(ctx, current.PhotoKey); err != nil {
				s.log.Warn().Err(err).Str("key", current.PhotoKey).Msg("failed to delete replaced store photo")
			}
		}
		changes.PhotoKey = &key
	}

	if changes.Empty() {
		return domain.ErrNoChanges
	}

	// 4. The write itself repeats the ownership predicate, so a concurrent
	// transfer or delete between steps 1 and 4 cannot be raced.
	if err := s.repo.ConditionalUpdate(ctx, storeID, claims.PrincipalID, changes); err != nil {
		return err
	}

	s.log.Info().Int64("store_id", storeID).Int64("manager_id", claims.PrincipalID).Msg("store updated")
	return nil
}

func (s *storeService) Delete(ctx context.Context, claims auth.Claims, storeID int64) error {
	current, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeMutation(claims, current.OwnerID); err != nil {
		metrics.OwnershipDenialsTotal.WithLabelValues("store_delete").Inc()
		return err
	}

	if err := s.repo.ConditionalDelete(ctx, storeID, claims.PrincipalID); err != nil {
		return err
	}

	if current.PhotoKey != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, current.PhotoKey); err != nil {
			s.log.Warn().Err(err).Str("key", current.PhotoKey).Msg("failed to delete photo of removed store")
		}
	}

	s.log.Info().Int64("store_id", storeID).Int64("manager_id", claims.PrincipalID).Msg("store deleted")
	return nil
}

func (s *storeService) ListAll(ctx context.Context) ([]*domain.Store, error) {
	return s.repo.ListAll(ctx)
}

func (s *storeService) ListOwn(ctx context.Context, claims auth.Claims) ([]*domain.Store, error) {
	// Scoped by the claim's principal id, never by a client-supplied one.
	return s.repo.ListByOwner(ctx, claims.PrincipalID)
}

func (s *storeService) Photo(ctx context.Context, storeID int64) ([]byte, string, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return nil, "", err
	}
	if store.PhotoKey == "" || s.photos == nil {
		return nil, "", domain.ErrPhotoNotFound
	}
	return s.photos.Get(ctx, store.PhotoKey)
}

func photoKey(storeID int64, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("store_%d_profile%s", storeID, ext)
}
