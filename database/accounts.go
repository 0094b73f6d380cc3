package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	cascadeAttempts = 3
	cascadeBackoff  = 100 * time.Millisecond
)

// AccountRepository removes a user together with everything they own.
type AccountRepository struct {
	store *Store
	media *MediaRepository
}

func NewAccountRepository(s *Store) *AccountRepository {
	return &AccountRepository{store: s, media: NewMediaRepository(s)}
}

type cascadeStep struct {
	name string
	run  func(ctx context.Context) error
}

func (r *AccountRepository) steps(userID primitive.ObjectID) []cascadeStep {
	s := r.store
	byUser := bson.M{"user": userID}

	deleteMany := func(coll *mongo.Collection) func(context.Context) error {
		return func(ctx context.Context) error {
			_, err := coll.DeleteMany(ctx, byUser)
			return err
		}
	}

	// dependents first, the user document last
	return []cascadeStep{
		{"posts", deleteMany(s.Posts)},
		{"media", deleteMany(s.Media)},
		{"push subscriptions", deleteMany(s.PushSubs)},
		{"profile", deleteMany(s.Profiles)},
		{"user", func(ctx context.Context) error {
			_, err := s.Users.DeleteOne(ctx, bson.M{"_id": userID})
			return err
		}},
	}
}

// Delete removes the user's posts, media records, push subscription, profile
// and finally the user. It returns the media records that were removed so
// the caller can clean up their blobs.
func (r *AccountRepository) Delete(ctx context.Context, userID primitive.ObjectID) ([]models.Media, error) {
	media, err := r.media.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	steps := r.steps(userID)

	if r.store.transactions {
		err := r.inTransaction(ctx, steps)
		if err == nil {
			return media, nil
		}
		if !transactionsUnsupported(err) {
			return nil, err
		}
	}

	if err := runSequential(ctx, steps); err != nil {
		return nil, err
	}
	return media, nil
}

func (r *AccountRepository) inTransaction(ctx context.Context, steps []cascadeStep) error {
	session, err := r.store.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, step := range steps {
			if err := step.run(sc); err != nil {
				return nil, fmt.Errorf("delete %s: %w", step.name, err)
			}
		}
		return nil, nil
	})
	return err
}

// runSequential is used on deployments without transactions. Every step is
// idempotent, so a partially failed cascade can be retried as a whole.
func runSequential(ctx context.Context, steps []cascadeStep) error {
	for _, step := range steps {
		var err error
		for attempt := 1; attempt <= cascadeAttempts; attempt++ {
			if err = step.run(ctx); err == nil {
				break
			}
			if attempt == cascadeAttempts {
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("delete %s: %w", step.name, ctx.Err())
			case <-time.After(time.Duration(attempt) * cascadeBackoff):
			}
		}
		if err != nil {
			return fmt.Errorf("delete %s: %w", step.name, err)
		}
	}
	return nil
}

// transactionsUnsupported reports the error a standalone server returns
// for transactional commands.
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Code == 20 || strings.Contains(cmdErr.Message, "Transaction numbers") {
			return true
		}
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
