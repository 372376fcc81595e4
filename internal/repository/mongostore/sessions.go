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

type sessionDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	ExpiresAt time.Time  `bson:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

// SessionRepo is the Mongo-backed SessionStore.
type SessionRepo struct{ coll *mongo.Collection }

func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	doc := sessionDoc{ID: s.ID, UserID: s.UserID, ExpiresAt: s.ExpiresAt.UTC(), CreatedAt: s.CreatedAt.UTC()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var d sessionDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Session{}, repository.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("find session: %w", err)
	}
	return model.Session{ID: d.ID, UserID: d.UserID, ExpiresAt: d.ExpiresAt, RevokedAt: d.RevokedAt, CreatedAt: d.CreatedAt}, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
