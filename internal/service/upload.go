package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/storage"
	"github.com/iliyamo/csvboard/internal/tabular"
	"github.com/iliyamo/csvboard/internal/utils"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// csvSuffix is matched exactly: "data.CSV" is rejected.
const csvSuffix = ".csv"

// UploadService validates and parses uploaded CSV files, stores their bytes
// and registers them. Parsed rows only live for the response.
type UploadService struct {
	files    *FileService
	blobs    storage.BlobStore
	events   queue.Publisher
	log      *zap.Logger
	maxBytes int64
}

func NewUploadService(files *FileService, blobs storage.BlobStore, events queue.Publisher, log *zap.Logger, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{files: files, blobs: blobs, events: events, log: log, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// AcceptUpload parses data for display and, when that succeeds, stores and
// registers it. On any failure nothing is registered.
func (s *UploadService) AcceptUpload(ctx context.Context, userID string, data []byte, filename string) (tabular.Table, model.FileRecord, error) {
	table, err := s.ParseForDisplay(data, filename)
	if err != nil {
		return tabular.Table{}, model.FileRecord{}, err
	}
	rec, err := s.RegisterMetadata(ctx, userID, filename, data)
	if err != nil {
		return tabular.Table{}, model.FileRecord{}, err
	}
	return table, rec, nil
}

// ParseForDisplay checks the declared filename and parses data as CSV.
// It does not touch any store.
func (s *UploadService) ParseForDisplay(data []byte, filename string) (tabular.Table, error) {
	if !strings.HasSuffix(filename, csvSuffix) {
		return tabular.Table{}, ErrUnsupportedType
	}
	if int64(len(data)) > s.maxBytes {
		return tabular.Table{}, ErrFileTooLarge
	}
	table, err := tabular.ParseCSV(data)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	return table, nil
}

// RegisterMetadata sanitizes filename, stores data under the user's key and
// upserts the registry record. The bytes are removed again when the record
// cannot be written.
func (s *UploadService) RegisterMetadata(ctx context.Context, userID, filename string, data []byte) (model.FileRecord, error) {
	name := utils.SecureFilename(filename)
	if name == "" || !strings.HasSuffix(name, csvSuffix) {
		return model.FileRecord{}, ErrUnsupportedType
	}
	key := storage.FileKey(userID, name)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return model.FileRecord{}, fmt.Errorf("store upload: %w", err)
	}
	rec, err := s.files.Register(ctx, userID, name, int64(len(data)))
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil && !errors.Is(derr, storage.ErrNotExist) {
			s.log.Warn("orphan upload left behind", zap.String("key", key), zap.Error(derr))
		}
		return model.FileRecord{}, err
	}
	s.log.Info("file uploaded",
		zap.String("user_id", userID),
		zap.String("filename", name),
		zap.Int64("size", rec.Size))
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventFileUploaded, UserID: userID, Filename: name})
	return rec, nil
}
