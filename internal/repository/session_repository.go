package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/csvboard/internal/model"
)

// SessionRepo persists login sessions in MySQL (table 'sessions').
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?,?,?,?)",
		s.ID, s.UserID, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get loads a session by id, revoked or not.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var (
		s         model.Session
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, revoked_at, created_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, fmt.Errorf("select session: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	return s, nil
}

// Revoke marks a session as revoked; already revoked rows are left as is.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=? WHERE id=? AND revoked_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before cutoff. The server runs
// it at startup and hourly after that so the table does not grow without
// bound.
func (r *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
