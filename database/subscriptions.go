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

// SubscriptionRepository stores one web push subscription per user.
type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(s *Store) *SubscriptionRepository {
	return &SubscriptionRepository{coll: s.PushSubs}
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub models.PushSubscription) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user": sub.User},
		bson.M{
			"$set": bson.M{
				"endpoint": sub.Endpoint,
				"keys":     sub.Keys,
				"date":     sub.Date,
			},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
