package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Like struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	User primitive.ObjectID `bson:"user" json:"user"`
}

func NewLike(userID primitive.ObjectID) Like {
	return Like{ID: primitive.NewObjectID(), User: userID}
}

type Comment struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	AuthorSnapshot `bson:",inline"`
	Text           string    `bson:"text" json:"text"`
	Likes          []Like    `bson:"likes" json:"likes"`
	Date           time.Time `bson:"date" json:"date"`
}

type Post struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	AuthorSnapshot `bson:",inline"`
	Text           string    `bson:"text" json:"text"`
	Likes          []Like    `bson:"likes" json:"likes"`
	Comments       []Comment `bson:"comments" json:"comments"`
	Date           time.Time `bson:"date" json:"date"`
}

func hasLike(likes []Like, userID primitive.ObjectID) bool {
	for _, l := range likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return hasLike(p.Likes, userID)
}

func (c *Comment) LikedBy(userID primitive.ObjectID) bool {
	return hasLike(c.Likes, userID)
}

// Comment returns the embedded comment with the given id, or nil.
func (p *Post) Comment(id primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}
