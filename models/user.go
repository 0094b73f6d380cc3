package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	SecondName string             `bson:"secondName" json:"secondName"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Avatar     string             `bson:"avatar" json:"avatar"`
	Date       time.Time          `bson:"date" json:"date"`
}

// UserSummary is the subset of a user joined into profile reads.
type UserSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	SecondName string             `bson:"secondName" json:"secondName"`
	Avatar     string             `bson:"avatar" json:"avatar"`
}

// AuthorSnapshot is copied into posts and comments when they are written.
// It is never refreshed, so later changes to the user do not show up in
// existing content.
type AuthorSnapshot struct {
	Name       string `bson:"name" json:"name"`
	SecondName string `bson:"secondName" json:"secondName"`
	Avatar     string `bson:"avatar" json:"avatar"`
}

func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		Name:       u.Name,
		SecondName: u.SecondName,
		Avatar:     u.Avatar,
	}
}
