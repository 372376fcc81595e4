package repository

import (
	"context"

	"github.com/iliyamo/csvboard/internal/model"
)

// UserStore is the credential store.
type UserStore interface {
	// Create inserts u. ErrDuplicate when the username is taken.
	Create(ctx context.Context, u model.User) error
	// GetByID and GetByUsername return ErrNotFound when nothing matches.
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	// Update applies every non-nil field of upd in one write and bumps
	// UpdatedAt. ErrNotFound when the user does not exist.
	Update(ctx context.Context, id string, upd model.UserUpdate) error
}

// FileStore is the file registry. Records are addressed by (owner, filename).
type FileStore interface {
	// Upsert inserts f or, when the owner already has a file with that name,
	// refreshes its size and creation time. The stored record is returned.
	Upsert(ctx context.Context, f model.FileRecord) (model.FileRecord, error)
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error)
	GetByOwnerAndName(ctx context.Context, ownerID, filename string) (model.FileRecord, error)
	GetByID(ctx context.Context, id string) (model.FileRecord, error)
	// DeleteByOwnerAndName reports whether a record was removed.
	DeleteByOwnerAndName(ctx context.Context, ownerID, filename string) (bool, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	// Get returns ErrNotFound for unknown sessions. Callers check Active.
	Get(ctx context.Context, id string) (model.Session, error)
	// Revoke marks the session revoked. Revoking an unknown or already
	// revoked session is not an error.
	Revoke(ctx context.Context, id string) error
}
