package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/repository"
	"github.com/iliyamo/csvboard/internal/storage"
)

// FileService is the per-user file registry. Lookups by name are always
// scoped to the calling user, so other users' files are invisible.
type FileService struct {
	files  repository.FileStore
	blobs  storage.BlobStore
	events queue.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewFileService(files repository.FileStore, blobs storage.BlobStore, events queue.Publisher, log *zap.Logger) *FileService {
	return &FileService{files: files, blobs: blobs, events: events, log: log, now: time.Now}
}

// ListForOwner returns the user's files, newest first.
func (s *FileService) ListForOwner(ctx context.Context, userID string) ([]model.FileRecord, error) {
	out, err := s.files.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return out, nil
}

// Register records that userID owns filename. Registering a name the user
// already owns refreshes size and timestamp of the existing record.
func (s *FileService) Register(ctx context.Context, userID, filename string, size int64) (model.FileRecord, error) {
	if userID == "" || strings.TrimSpace(filename) == "" || size < 0 {
		return model.FileRecord{}, ErrValidation
	}
	rec, err := s.files.Upsert(ctx, model.FileRecord{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Filename:  filename,
		Size:      size,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("register file: %w", err)
	}
	return rec, nil
}

// Delete removes the user's file called filename. A name the user does not
// own reports ErrNotFound, whoever else may own it.
func (s *FileService) Delete(ctx context.Context, userID, filename string) error {
	rec, err := s.files.GetByOwnerAndName(ctx, userID, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup file: %w", err)
	}
	return s.remove(ctx, rec)
}

// DeleteByID removes the record with the given id. Unlike Delete it can see
// other users' records and answers ErrForbidden for them.
func (s *FileService) DeleteByID(ctx context.Context, userID, id string) error {
	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup file: %w", err)
	}
	if err := RequireOwnership(userID, rec.OwnerID); err != nil {
		return err
	}
	return s.remove(ctx, rec)
}

func (s *FileService) remove(ctx context.Context, rec model.FileRecord) error {
	removed, err := s.files.DeleteByOwnerAndName(ctx, rec.OwnerID, rec.Filename)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	// bytes are best-effort: the registry is the source of truth
	if err := s.blobs.Delete(ctx, storage.FileKey(rec.OwnerID, rec.Filename)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.log.Warn("blob delete failed",
			zap.String("user_id", rec.OwnerID),
			zap.String("filename", rec.Filename),
			zap.Error(err))
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventFileDeleted, UserID: rec.OwnerID, Filename: rec.Filename})
	return nil
}

// Count returns how many files the user owns.
func (s *FileService) Count(ctx context.Context, userID string) (int, error) {
	n, err := s.files.CountByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
