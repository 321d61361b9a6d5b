package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

const collectionStores = "stores"

// StoreRepository implements ports.StoreRepository on MongoDB. The
// conditional mutations express fetch-then-authorize-then-mutate as one
// filtered write: {store_id, manager_id} both appear in the filter, so a
// non-owner's update matches zero documents no matter how the request races.
type StoreRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{db: db, coll: db.Collection(collectionStores)}
}

type storeDoc struct {
	StoreID     int64     `bson:"store_id"`
	ManagerID   int64     `bson:"manager_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Street      string    `bson:"street"`
	City        string    `bson:"city"`
	State       string    `bson:"state"`
	ZipCode     string    `bson:"zip_code"`
	Latitude    float64   `bson:"latitude,omitempty"`
	Longitude   float64   `bson:"longitude,omitempty"`
	PhotoKey    string    `bson:"photo_key,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d *storeDoc) toDomain() *domain.Store {
	return &domain.Store{
		ID:          d.StoreID,
		OwnerID:     d.ManagerID,
		Name:        d.Name,
		Description: d.Description,
		Street:      d.Street,
		City:        d.City,
		State:       d.State,
		ZipCode:     d.ZipCode,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		PhotoKey:    d.PhotoKey,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *StoreRepository) Insert(ctx context.Context, store *domain.Store) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, "store_id")
	if err != nil {
		return 0, err
	}

	doc := storeDoc{
		StoreID:     id,
		ManagerID:   store.OwnerID,
		Name:        store.Name,
		Description: store.Description,
		Street:      store.Street,
		City:        store.City,
		State:       store.State,
		ZipCode:     store.ZipCode,
		Latitude:    store.Latitude,
		Longitude:   store.Longitude,
		PhotoKey:    store.PhotoKey,
		CreatedAt:   store.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	return id, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storeDoc
	if err := r.coll.FindOne(ctx, bson.M{"store_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StoreRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		ManagerID int64 `bson:"manager_id"`
	}
	err := r.coll.FindOne(ctx,
		bson.M{"store_id": id},
		options.FindOne().SetProjection(bson.M{"manager_id": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrStoreNotFound
		}
		return 0, fmt.Errorf("find store owner: %w", err)
	}
	return doc.ManagerID, nil
}

func (r *StoreRepository) ListAll(ctx context.Context) ([]*domain.Store, error) {
	return r.list(ctx, bson.M{})
}

func (r *StoreRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Store, error) {
	return r.list(ctx, bson.M{"manager_id": ownerID})
}

func (r *StoreRepository) list(ctx context.Context, filter bson.M) ([]*domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer cur.Close(ctx)

	var stores []*domain.Store
	for cur.Next(ctx) {
		var doc storeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode store: %w", err)
		}
		stores = append(stores, doc.toDomain())
	}
	return stores, cur.Err()
}

func (r *StoreRepository) ConditionalUpdate(ctx context.Context, id, ownerID int64, changes domain.StoreChanges) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	setField(set, "name", changes.Name)
	setField(set, "description", changes.Description)
	setField(set, "street", changes.Street)
	setField(set, "city", changes.City)
	setField(set, "state", changes.State)
	setField(set, "zip_code", changes.ZipCode)
	setField(set, "latitude", changes.Latitude)
	setField(set, "longitude", changes.Longitude)
	setField(set, "photo_key", changes.PhotoKey)
	if len(set) == 0 {
		return domain.ErrNoChanges
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"store_id": id, "manager_id": ownerID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if res.MatchedCount == 0 {
		// Not found and not-the-owner are indistinguishable on purpose.
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) ConditionalDelete(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"store_id": id, "manager_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the store queries rely on.
func (r *StoreRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "manager_id", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func setField[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}
