// Package mongostore implements the repository contracts on MongoDB. Users,
// files and sessions live in their own collections; ids are UUID strings
// stored in _id and timestamps are explicit fields set at insert.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/csvboard/internal/repository"
)

const (
	usersCollection    = "users"
	filesCollection    = "files"
	sessionsCollection = "sessions"
)

// Store groups the collections of one database.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store { return &Store{db: db} }

func (s *Store) Users() repository.UserStore {
	return &UserRepo{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Files() repository.FileStore {
	return &FileRepo{coll: s.db.Collection(filesCollection)}
}

func (s *Store) Sessions() repository.SessionStore {
	return &SessionRepo{coll: s.db.Collection(sessionsCollection)}
}

// EnsureIndexes creates the unique username index, the (owner, filename)
// unique index with a listing index, and a TTL index that lets MongoDB drop
// expired sessions on its own.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.db.Collection(filesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "filename", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}); err != nil {
		return fmt.Errorf("files indexes: %w", err)
	}
	if _, err := s.db.Collection(sessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return fmt.Errorf("sessions index: %w", err)
	}
	return nil
}
