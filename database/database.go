package database

import (
	"context"
	"fmt"
	"time"

	"socialapi/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection         = "users"
	ProfilesCollection      = "profiles"
	PostsCollection         = "posts"
	MediaCollection         = "media"
	SubscriptionsCollection = "push_subscriptions"
)

// Store holds the process-wide client and the collections the repositories
// work on.
type Store struct {
	Client   *mongo.Client
	DB       *mongo.Database
	Users    *mongo.Collection
	Profiles *mongo.Collection
	Posts    *mongo.Collection
	Media    *mongo.Collection
	PushSubs *mongo.Collection

	transactions bool
}

func New(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{
		Client:       client,
		DB:           db,
		Users:        db.Collection(UsersCollection),
		Profiles:     db.Collection(ProfilesCollection),
		Posts:        db.Collection(PostsCollection),
		Media:        db.Collection(MediaCollection),
		PushSubs:     db.Collection(SubscriptionsCollection),
		transactions: transactions,
	}
}

func Connect(ctx context.Context, cfg config.Mongo) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return New(client, client.Database(cfg.Database), cfg.Transactions), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Disconnect(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.Profiles: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.Posts: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
		s.Media: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}}},
		},
		s.PushSubs: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
