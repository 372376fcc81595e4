package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/csvboard/internal/model"
)

// UserRepo is the MySQL-backed UserStore (table 'users').
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,display_name,bio,email,avatar,theme,created_at,updated_at"

// Create inserts u.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Username, u.PasswordHash, u.DisplayName, u.Bio, u.Email, u.Avatar, u.Theme,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Bio, &u.Email,
		&u.Avatar, &u.Theme, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// Update builds a single UPDATE from the non-nil fields of upd so a
// password change and profile edits land together or not at all.
func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) error {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	add("email", upd.Email)
	add("display_name", upd.DisplayName)
	add("bio", upd.Bio)
	add("avatar", upd.Avatar)
	add("theme", upd.Theme)
	add("password_hash", upd.PasswordHash)
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		// MySQL reports 0 affected rows for a no-op update too; only a
		// missing row is an error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// isDuplicateKey reports MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
