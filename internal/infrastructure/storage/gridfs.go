// Package storage provides the blob-storage collaborator for store profile
// photos, backed by MongoDB GridFS so no extra infrastructure is needed
// beyond the database the service already runs on.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

const bucketName = "store_photos"

// GridFSPhotoStore implements ports.PhotoStore on a GridFS bucket.
type GridFSPhotoStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSPhotoStore(db *mongo.Database) (*GridFSPhotoStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSPhotoStore{bucket: bucket}, nil
}

// Put stores data under key, replacing any previous object with that key.
func (s *GridFSPhotoStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	// Drop any previous revision first so a key always names one object.
	if err := s.Delete(ctx, key); err != nil {
		return err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	if _, err := s.bucket.UploadFromStream(key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("gridfs upload %s: %w", key, err)
	}
	return nil
}

// Get returns the object bytes and its stored content type.
func (s *GridFSPhotoStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", domain.ErrPhotoNotFound
		}
		return nil, "", fmt.Errorf("gridfs open %s: %w", key, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", fmt.Errorf("gridfs read %s: %w", key, err)
	}

	contentType := "image/jpeg"
	if file := stream.GetFile(); file != nil && len(file.Metadata) > 0 {
		var meta struct {
			ContentType string `bson:"content_type"`
		}
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return data, contentType, nil
}

// Delete removes every file stored under key. A missing key is not an error.
func (s *GridFSPhotoStore) Delete(ctx context.Context, key string) error {
	cur, err := s.bucket.FindContext(ctx, bson.M{"filename": key})
	if err != nil {
		return fmt.Errorf("gridfs find %s: %w", key, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cur.Decode(&file); err != nil {
			return fmt.Errorf("gridfs decode %s: %w", key, err)
		}
		if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("gridfs delete %s: %w", key, err)
		}
	}
	return cur.Err()
}
