package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/devconnector/devconnector-go/internal/model"
)

type profileDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	User           bson.ObjectID `bson:"user"`
	Company        string        `bson:"company"`
	Website        string        `bson:"website"`
	Location       string        `bson:"location"`
	Status         string        `bson:"status"`
	Skills         []string      `bson:"skills"`
	Bio            string        `bson:"bio"`
	GitHubUsername string        `bson:"githubusername"`
	Social         model.Social  `bson:"social"`
	Date           time.Time     `bson:"date"`
	UpdatedAt      time.Time     `bson:"updated_at,omitempty"`
}

func (d *profileDocument) toModel() *model.Profile {
	return &model.Profile{
		ID:             d.ID.Hex(),
		UserID:         d.User.Hex(),
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Status:         d.Status,
		Skills:         d.Skills,
		Bio:            d.Bio,
		GitHubUsername: d.GitHubUsername,
		Social:         d.Social,
		CreatedAt:      d.Date,
		UpdatedAt:      d.UpdatedAt,
	}
}

// profileFields is the $set document of an upsert. Optional fields are only
// present when the update carries them.
func profileFields(u *model.ProfileUpdate, now time.Time) bson.M {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}

	fields := bson.M{
		"status":     u.Status,
		"skills":     skills,
		"website":    u.Website,
		"social":     u.Social,
		"updated_at": now,
	}
	optional := map[string]*string{
		"company":        u.Company,
		"location":       u.Location,
		"bio":            u.Bio,
		"githubusername": u.GitHubUsername,
	}
	for key, value := range optional {
		if value != nil {
			fields[key] = *value
		}
	}
	return fields
}

// retryOnDuplicate runs op a second time if it lost an insert race on a
// unique index. The retry finds the winner's document and updates it.
func retryOnDuplicate(op func() error) error {
	err := op()
	if mongo.IsDuplicateKeyError(err) {
		err = op()
	}
	return err
}

type profileMongoRepository struct {
	db *mongo.Database
}

// NewProfileMongoRepository creates a ProfileRepository backed by the profiles collection.
func NewProfileMongoRepository(db *mongo.Database) ProfileRepository {
	return &profileMongoRepository{db: db}
}

func (r *profileMongoRepository) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrProfileNotFound
	}

	var doc profileDocument
	err = r.db.Collection(profileCollection).FindOne(ctx, bson.M{"user": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *profileMongoRepository) Upsert(ctx context.Context, update *model.ProfileUpdate) (*model.Profile, error) {
	objectID, err := bson.ObjectIDFromHex(update.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", update.UserID, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	change := bson.M{
		"$set":         profileFields(update, now),
		"$setOnInsert": bson.M{"date": now},
	}

	var doc profileDocument
	err = retryOnDuplicate(func() error {
		return r.db.Collection(profileCollection).FindOneAndUpdate(
			ctx,
			bson.M{"user": objectID},
			change,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}

	return doc.toModel(), nil
}
