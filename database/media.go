package database

import (
	"context"
	"errors"
	"fmt"

	"socialapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MediaRepository struct {
	coll *mongo.Collection
}

func NewMediaRepository(s *Store) *MediaRepository {
	return &MediaRepository{coll: s.Media}
}

func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	if media.ID.IsZero() {
		media.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, media); err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *MediaRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Media, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Media{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	return items, nil
}

func (r *MediaRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Media, error) {
	var media models.Media
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&media)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	return &media, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
