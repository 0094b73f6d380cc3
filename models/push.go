package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PushKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh"`
	Auth   string `bson:"auth" json:"auth"`
}

type PushSubscription struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Endpoint string             `bson:"endpoint" json:"endpoint"`
	Keys     PushKeys           `bson:"keys" json:"keys"`
	Date     time.Time          `bson:"date" json:"date"`
}
