package database

import (
	"context"
	"fmt"
	"time"

	"socialapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(s *Store) *ProfileRepository {
	return &ProfileRepository{coll: s.Profiles}
}

// withOwner joins name, secondName and avatar of the owning user.
func withOwner(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"owner.email": 0, "owner.password": 0, "owner.date": 0}}},
	}
}

func (r *ProfileRepository) aggregate(ctx context.Context, match bson.M) ([]models.Profile, error) {
	cursor, err := r.coll.Aggregate(ctx, withOwner(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	profiles, err := r.aggregate(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	return r.aggregate(ctx, bson.M{})
}

// Upsert creates the profile on first use and afterwards sets only the
// fields present in u.
func (r *ProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, u models.ProfileUpdate) (*models.Profile, error) {
	_, err := r.coll.UpdateOne(ctx, bson.M{"user": userID}, profileUpdateDoc(userID, u, time.Now()),
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return r.FindByUser(ctx, userID)
}

func profileUpdateDoc(userID primitive.ObjectID, u models.ProfileUpdate, now time.Time) bson.M {
	set := bson.M{}
	setString := func(key, value string) {
		if value != "" {
			set[key] = value
		}
	}

	setString("company", u.Company)
	setString("website", u.Website)
	setString("location", u.Location)
	setString("status", u.Status)
	setString("bio", u.Bio)

	setString("social.youtube", u.Social.YouTube)
	setString("social.twitter", u.Social.Twitter)
	setString("social.facebook", u.Social.Facebook)
	setString("social.linkedin", u.Social.LinkedIn)
	setString("social.instagram", u.Social.Instagram)
	setString("social.vk", u.Social.VK)
	setString("social.tiktok", u.Social.TikTok)
	setString("social.telegram", u.Social.Telegram)

	setString("contacts.mobilePhone", u.Contacts.MobilePhone)
	setString("contacts.phone", u.Contacts.Phone)
	setString("contacts.fax", u.Contacts.Fax)
	setString("contacts.email", u.Contacts.Email)
	setString("contacts.viber", u.Contacts.Viber)
	setString("contacts.hangouts", u.Contacts.Hangouts)
	setString("contacts.skype", u.Contacts.Skype)

	onInsert := bson.M{
		"user":      userID,
		"date":      now,
		"education": []models.Education{},
	}
	if u.Skills != nil {
		set["skills"] = u.Skills
	} else {
		onInsert["skills"] = []models.Skill{}
	}

	update := bson.M{"$setOnInsert": onInsert}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

// AddEducation puts the entry at the front of the education list.
func (r *ProfileRepository) AddEducation(ctx context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error) {
	if edu.ID.IsZero() {
		edu.ID = primitive.NewObjectID()
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"user": userID}, bson.M{
		"$push": bson.M{"education": bson.M{
			"$each":     []models.Education{edu},
			"$position": 0,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("add education: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.FindByUser(ctx, userID)
}

// RemoveEducation pulls the entry by id. An unknown id leaves the profile as is.
func (r *ProfileRepository) RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"user": userID}, bson.M{
		"$pull": bson.M{"education": bson.M{"_id": eduID}},
	})
	if err != nil {
		return nil, fmt.Errorf("remove education: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.FindByUser(ctx, userID)
}
