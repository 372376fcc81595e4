package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/csvboard/internal/model"
)

// FileRepo is the MySQL-backed FileStore (table 'files'). The table has a
// unique key on (user_id, filename).
type FileRepo struct{ DB *sql.DB }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{DB: db} }

const fileColumns = "id,user_id,filename,size,created_at"

// Upsert inserts the record or refreshes an existing one with the same
// owner and filename, then reads the stored row back.
func (r *FileRepo) Upsert(ctx context.Context, f model.FileRecord) (model.FileRecord, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO files ("+fileColumns+") VALUES (?,?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE size=VALUES(size), created_at=VALUES(created_at)",
		f.ID, f.OwnerID, f.Filename, f.Size, f.CreatedAt.UTC())
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("upsert file: %w", err)
	}
	return r.GetByOwnerAndName(ctx, f.OwnerID, f.Filename)
}

// ListByOwner returns the owner's files, newest first.
func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE user_id=? ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := make([]model.FileRecord, 0)
	for rows.Next() {
		var f model.FileRecord
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Filename, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return out, nil
}

func (r *FileRepo) GetByOwnerAndName(ctx context.Context, ownerID, filename string) (model.FileRecord, error) {
	return r.getOne(ctx, "SELECT "+fileColumns+" FROM files WHERE user_id=? AND filename=? LIMIT 1", ownerID, filename)
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (model.FileRecord, error) {
	return r.getOne(ctx, "SELECT "+fileColumns+" FROM files WHERE id=? LIMIT 1", id)
}

func (r *FileRepo) getOne(ctx context.Context, query string, args ...any) (model.FileRecord, error) {
	var f model.FileRecord
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&f.ID, &f.OwnerID, &f.Filename, &f.Size, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FileRecord{}, ErrNotFound
		}
		return model.FileRecord{}, fmt.Errorf("select file: %w", err)
	}
	return f, nil
}

// DeleteByOwnerAndName deletes only when both owner and filename match.
func (r *FileRepo) DeleteByOwnerAndName(ctx context.Context, ownerID, filename string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM files WHERE user_id=? AND filename=?", ownerID, filename)
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	return n > 0, nil
}

func (r *FileRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE user_id=?", ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
