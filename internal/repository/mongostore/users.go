package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/repository"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	DisplayName  string    `bson:"display_name,omitempty"`
	Bio          string    `bson:"bio,omitempty"`
	Email        string    `bson:"email,omitempty"`
	Avatar       string    `bson:"profile_pic,omitempty"`
	Theme        string    `bson:"preferred_theme"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u model.User) userDoc {
	return userDoc{
		ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash,
		DisplayName: u.DisplayName, Bio: u.Bio, Email: u.Email, Avatar: u.Avatar,
		Theme: u.Theme, CreatedAt: u.CreatedAt.UTC(), UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func (d userDoc) model() model.User {
	return model.User{
		ID: d.ID, Username: d.Username, PasswordHash: d.PasswordHash,
		DisplayName: d.DisplayName, Bio: d.Bio, Email: d.Email, Avatar: d.Avatar,
		Theme: d.Theme, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

// updateDoc maps the non-nil fields of upd onto a $set document.
func updateDoc(upd model.UserUpdate, now time.Time) bson.M {
	set := bson.M{}
	put := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	put("email", upd.Email)
	put("display_name", upd.DisplayName)
	put("bio", upd.Bio)
	put("profile_pic", upd.Avatar)
	put("preferred_theme", upd.Theme)
	put("password_hash", upd.PasswordHash)
	set["updated_at"] = now.UTC()
	return bson.M{"$set": set}
}

// UserRepo is the Mongo-backed UserStore.
type UserRepo struct{ coll *mongo.Collection }

func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	if _, err := r.coll.InsertOne(ctx, toUserDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return d.model(), nil
}

func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) error {
	if upd.Empty() {
		return nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, updateDoc(upd, time.Now()))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
