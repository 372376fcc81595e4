package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/repository"
)

type fileDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"user_id"`
	Filename  string    `bson:"filename"`
	Size      int64     `bson:"size"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d fileDoc) model() model.FileRecord {
	return model.FileRecord{ID: d.ID, OwnerID: d.OwnerID, Filename: d.Filename, Size: d.Size, CreatedAt: d.CreatedAt}
}

// FileRepo is the Mongo-backed FileStore.
type FileRepo struct{ coll *mongo.Collection }

// Upsert keeps the _id of an existing (owner, filename) document and
// refreshes its size and creation time.
func (r *FileRepo) Upsert(ctx context.Context, f model.FileRecord) (model.FileRecord, error) {
	filter := bson.M{"user_id": f.OwnerID, "filename": f.Filename}
	update := bson.M{
		"$set":         bson.M{"size": f.Size, "created_at": f.CreatedAt.UTC()},
		"$setOnInsert": bson.M{"_id": f.ID},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return model.FileRecord{}, fmt.Errorf("upsert file: %w", err)
	}
	return r.findOne(ctx, filter)
}

func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	out := make([]model.FileRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *FileRepo) GetByOwnerAndName(ctx context.Context, ownerID, filename string) (model.FileRecord, error) {
	return r.findOne(ctx, bson.M{"user_id": ownerID, "filename": filename})
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (model.FileRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *FileRepo) findOne(ctx context.Context, filter bson.M) (model.FileRecord, error) {
	var d fileDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.FileRecord{}, repository.ErrNotFound
		}
		return model.FileRecord{}, fmt.Errorf("find file: %w", err)
	}
	return d.model(), nil
}

func (r *FileRepo) DeleteByOwnerAndName(ctx context.Context, ownerID, filename string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": ownerID, "filename": filename})
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *FileRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return int(n), nil
}
