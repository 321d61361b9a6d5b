package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

const collectionAuthEvents = "auth_events"

// AuditRepository implements ports.AuditRepository on MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(collectionAuthEvents)}
}

type authEventDoc struct {
	Email string    `bson:"email"`
	Role  string    `bson:"role"`
	Kind  string    `bson:"kind"`
	At    time.Time `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := authEventDoc{
		Email: event.Email,
		Role:  event.Role.String(),
		Kind:  string(event.Kind),
		At:    event.At,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByEmail(ctx context.Context, role domain.Role, email string, limit int) ([]*domain.AuthEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	cur, err := r.coll.Find(ctx,
		bson.M{"role": role.String(), "email": email},
		options.Find().
			SetSort(bson.D{{Key: "at", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*domain.AuthEvent
	for cur.Next(ctx) {
		var doc authEventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode auth event: %w", err)
		}
		events = append(events, &domain.AuthEvent{
			Email: doc.Email,
			Role:  domain.Role(doc.Role),
			Kind:  domain.AuthEventKind(doc.Kind),
			At:    doc.At.UTC(),
		})
	}
	return events, cur.Err()
}

// EnsureIndexes creates the lookup index for the audit trail.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "email", Value: 1}, {Key: "at", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
