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

type PostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(s *Store) *PostRepository {
	return &PostRepository{coll: s.Posts}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// List returns every post, newest first.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) update(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &post, nil
}

// explain tells apart why a conditional update matched nothing.
func (r *PostRepository) explain(ctx context.Context, postID, commentID primitive.ObjectID, fallback error) error {
	post, err := r.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if !commentID.IsZero() && post.Comment(commentID) == nil {
		return ErrCommentNotFound
	}
	return fallback
}

// likeAttempts bounds retries when a like disappears between the guarded
// update and the follow-up read.
const likeAttempts = 2

// Like appends a like by userID. The filter makes the duplicate check and
// the push a single atomic step.
func (r *PostRepository) Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := r.update(ctx,
			bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}},
			bson.M{"$push": bson.M{"likes": models.NewLike(userID)}})
		if !errors.Is(err, ErrNotFound) {
			return post, err
		}

		current, err := r.FindByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if current.LikedBy(userID) || attempt == likeAttempts {
			return nil, ErrAlreadyLiked
		}
	}
}

// Unlike removes the like by userID if there is one.
func (r *PostRepository) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.update(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}})
}

// AddComment puts the comment at the front of the list.
func (r *PostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = []models.Like{}
	}

	return r.update(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": bson.M{
			"$each":     []models.Comment{comment},
			"$position": 0,
		}}})
}

func (r *PostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error) {
	post, err := r.update(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if errors.Is(err, ErrNotFound) {
		return nil, r.explain(ctx, postID, commentID, ErrCommentNotFound)
	}
	return post, err
}

// LikeComment prepends a like to the comment unless userID already liked it.
func (r *PostRepository) LikeComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := r.update(ctx,
			bson.M{
				"_id": postID,
				"comments": bson.M{"$elemMatch": bson.M{
					"_id":        commentID,
					"likes.user": bson.M{"$ne": userID},
				}},
			},
			bson.M{"$push": bson.M{"comments.$.likes": bson.M{
				"$each":     []models.Like{models.NewLike(userID)},
				"$position": 0,
			}}})
		if !errors.Is(err, ErrNotFound) {
			return post, err
		}

		current, err := r.FindByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		comment := current.Comment(commentID)
		if comment == nil {
			return nil, ErrCommentNotFound
		}
		if comment.LikedBy(userID) || attempt == likeAttempts {
			return nil, ErrAlreadyLiked
		}
	}
}

func (r *PostRepository) UnlikeComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error) {
	post, err := r.update(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$pull": bson.M{"comments.$.likes": bson.M{"user": userID}}})
	if errors.Is(err, ErrNotFound) {
		return nil, r.explain(ctx, postID, commentID, ErrCommentNotFound)
	}
	return post, err
}
