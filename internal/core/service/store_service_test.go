package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

type stubStoreRepo struct {
	stores map[int64]*domain.Store
	nextID int64

	// findOwnerOverride, when non-zero, makes FindByID report that owner
	// instead of the stored one. Simulates a stale read racing a concurrent
	// ownership-relevant write.
	findOwnerOverride int64
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: make(map[int64]*domain.Store)}
}

func cloneStore(s *domain.Store) *domain.Store {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func (r *stubStoreRepo) Insert(_ context.Context, store *domain.Store) (int64, error) {
	r.nextID++
	copy := cloneStore(store)
	copy.ID = r.nextID
	r.stores[copy.ID] = copy
	return copy.ID, nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id int64) (*domain.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	clone := cloneStore(s)
	if r.findOwnerOverride != 0 {
		clone.OwnerID = r.findOwnerOverride
	}
	return clone, nil
}

func (r *stubStoreRepo) OwnerOf(_ context.Context, id int64) (int64, error) {
	s, ok := r.stores[id]
	if !ok {
		return 0, domain.ErrStoreNotFound
	}
	return s.OwnerID, nil
}

func (r *stubStoreRepo) ListAll(_ context.Context) ([]*domain.Store, error) {
	var out []*domain.Store
	for _, s := range r.stores {
		out = append(out, cloneStore(s))
	}
	return out, nil
}

func (r *stubStoreRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Store, error) {
	var out []*domain.Store
	for _, s := range r.stores {
		if s.OwnerID == ownerID {
			out = append(out, cloneStore(s))
		}
	}
	return out, nil
}

func (r *stubStoreRepo) ConditionalUpdate(_ context.Context, id, ownerID int64, changes domain.StoreChanges) error {
	s, ok := r.stores[id]
	if !ok || s.OwnerID != ownerID {
		return domain.ErrStoreNotFound
	}
	if changes.Name != nil {
		s.Name = *changes.Name
	}
	if changes.Description != nil {
		s.Description = *changes.Description
	}
	if changes.City != nil {
		s.City = *changes.City
	}
	if changes.PhotoKey != nil {
		s.PhotoKey = *changes.PhotoKey
	}
	return nil
}

func (r *stubStoreRepo) ConditionalDelete(_ context.Context, id, ownerID int64) error {
	s, ok := r.stores[id]
	if !ok || s.OwnerID != ownerID {
		return domain.ErrStoreNotFound
	}
	delete(r.stores, id)
	return nil
}

type stubPhotoStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (p *stubPhotoStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	p.objects[key] = data
	p.types[key] = contentType
	return nil
}

func (p *stubPhotoStore) Get(_ context.Context, key string) ([]byte, string, error) {
	data, ok := p.objects[key]
	if !ok {
		return nil, "", domain.ErrPhotoNotFound
	}
	return data, p.types[key], nil
}

func (p *stubPhotoStore) Delete(_ context.Context, key string) error {
	delete(p.objects, key)
	delete(p.types, key)
	return nil
}

func managerClaims(id int64) auth.Claims {
	return auth.Claims{PrincipalID: id, Role: domain.RoleManager}
}

func newTestStoreService() (ports.StoreService, *stubStoreRepo, *stubPhotoStore) {
	repo := newStubStoreRepo()
	photos := newStubPhotoStore()
	return NewStoreService(repo, photos, testClock, zerolog.Nop()), repo, photos
}

func TestStoreService_Create_OwnerFromClaims(t *testing.T) {
	svc, repo, _ := newTestStoreService()

	store, err := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{
		Name: "Feira da Ana", Street: "Rua A", City: "Recife", State: "PE", ZipCode: "50000-000",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if store.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if store.OwnerID != 5 {
		t.Fatalf("owner must come from the claim, got %d", store.OwnerID)
	}
	if !store.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created_at: %v", store.CreatedAt)
	}
	if repo.stores[store.ID].OwnerID != 5 {
		t.Fatalf("stored owner mismatch")
	}
}

func TestStoreService_Update_ByOwner(t *testing.T) {
	svc, repo, _ := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Old Name", City: "Olinda"})

	name := "New Name"
	err := svc.Update(context.Background(), managerClaims(5), store.ID, ports.UpdateStoreInput{
		Changes: domain.StoreChanges{Name: &name},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.stores[store.ID].Name != "New Name" {
		t.Fatalf("name not applied: %q", repo.stores[store.ID].Name)
	}
}

func TestStoreService_Update_NotOwner(t *testing.T) {
	svc, repo, _ := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})

	name := "Hijacked"
	err := svc.Update(context.Background(), managerClaims(7), store.ID, ports.UpdateStoreInput{
		Changes: domain.StoreChanges{Name: &name},
	})
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if repo.stores[store.ID].Name != "Ana's" {
		t.Fatalf("store mutated by non-owner")
	}
}

func TestStoreService_Update_MissingStore(t *testing.T) {
	svc, _, _ := newTestStoreService()

	name := "x"
	err := svc.Update(context.Background(), managerClaims(5), 99, ports.UpdateStoreInput{
		Changes: domain.StoreChanges{Name: &name},
	})
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestStoreService_Update_StaleOwnershipRead(t *testing.T) {
	// The pre-check sees the caller as owner, but the record no longer is
	// theirs by the time the write lands. The conditional write must refuse.
	svc, repo, _ := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})

	repo.findOwnerOverride = 7
	name := "Hijacked"
	err := svc.Update(context.Background(), managerClaims(7), store.ID, ports.UpdateStoreInput{
		Changes: domain.StoreChanges{Name: &name},
	})
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound from conditional write, got %v", err)
	}
	if repo.stores[store.ID].Name != "Ana's" {
		t.Fatalf("store mutated through stale ownership read")
	}
}

func TestStoreService_Update_NoChanges(t *testing.T) {
	svc, _, _ := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})

	err := svc.Update(context.Background(), managerClaims(5), store.ID, ports.UpdateStoreInput{})
	if !errors.Is(err, domain.ErrNoChanges) {
		t.Fatalf("expected ErrNoChanges, got %v", err)
	}
}

func TestStoreService_Update_ReplacesPhoto(t *testing.T) {
	svc, repo, photos := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})

	first := ports.UpdateStoreInput{Photo: &ports.PhotoUpload{Data: []byte("png-bytes"), ContentType: "image/png", Ext: ".png"}}
	if err := svc.Update(context.Background(), managerClaims(5), store.ID, first); err != nil {
		t.Fatalf("first photo upload failed: %v", err)
	}
	firstKey := repo.stores[store.ID].PhotoKey
	if firstKey == "" {
		t.Fatalf("photo key not recorded")
	}

	second := ports.UpdateStoreInput{Photo: &ports.PhotoUpload{Data: []byte("jpg-bytes"), ContentType: "image/jpeg", Ext: ".jpg"}}
	if err := svc.Update(context.Background(), managerClaims(5), store.ID, second); err != nil {
		t.Fatalf("second photo upload failed: %v", err)
	}

	if _, ok := photos.objects[firstKey]; ok {
		t.Fatalf("replaced photo %q not deleted", firstKey)
	}
	data, contentType, err := svc.Photo(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("photo fetch failed: %v", err)
	}
	if string(data) != "jpg-bytes" || contentType != "image/jpeg" {
		t.Fatalf("unexpected photo: %q %q", data, contentType)
	}
}

func TestStoreService_Delete(t *testing.T) {
	svc, repo, photos := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})
	upload := ports.UpdateStoreInput{Photo: &ports.PhotoUpload{Data: []byte("x"), ContentType: "image/jpeg", Ext: ".jpg"}}
	if err := svc.Update(context.Background(), managerClaims(5), store.ID, upload); err != nil {
		t.Fatalf("photo upload failed: %v", err)
	}
	key := repo.stores[store.ID].PhotoKey

	if err := svc.Delete(context.Background(), managerClaims(7), store.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.Delete(context.Background(), managerClaims(5), store.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := repo.stores[store.ID]; ok {
		t.Fatalf("store not removed")
	}
	if _, ok := photos.objects[key]; ok {
		t.Fatalf("orphaned photo %q left behind", key)
	}

	if err := svc.Delete(context.Background(), managerClaims(5), store.ID); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound on second delete, got %v", err)
	}
}

func TestStoreService_ListOwn_ScopedByClaim(t *testing.T) {
	svc, _, _ := newTestStoreService()
	_, _ = svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "A"})
	_, _ = svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "B"})
	_, _ = svc.Create(context.Background(), managerClaims(7), ports.CreateStoreInput{Name: "C"})

	own, err := svc.ListOwn(context.Background(), managerClaims(5))
	if err != nil {
		t.Fatalf("list own failed: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(own))
	}
	for _, s := range own {
		if s.OwnerID != 5 {
			t.Fatalf("foreign store in scoped listing: %+v", s)
		}
	}

	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 stores, got %d", len(all))
	}
}

func TestStoreService_Photo_Missing(t *testing.T) {
	svc, _, _ := newTestStoreService()
	store, _ := svc.Create(context.Background(), managerClaims(5), ports.CreateStoreInput{Name: "Ana's"})

	if _, _, err := svc.Photo(context.Background(), store.ID); !errors.Is(err, domain.ErrPhotoNotFound) {
		t.Fatalf("expected ErrPhotoNotFound, got %v", err)
	}
	if _, _, err := svc.Photo(context.Background(), 99); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}
