package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/csvboard/internal/model"
)

// RedisSessionRepo keeps sessions in Redis with a TTL equal to their
// remaining lifetime. Revoking deletes the key, so a revoked session reads
// back as ErrNotFound.
type RedisSessionRepo struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisSessionRepo(rdb *redis.Client, prefix string) *RedisSessionRepo {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisSessionRepo{RDB: rdb, Prefix: prefix}
}

type redisSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *RedisSessionRepo) key(id string) string { return r.Prefix + ":" + id }

func (r *RedisSessionRepo) Create(ctx context.Context, s model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("store session: already expired")
	}
	body, err := json.Marshal(redisSession{UserID: s.UserID, ExpiresAt: s.ExpiresAt.UTC(), CreatedAt: s.CreatedAt.UTC()})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if err := r.RDB.Set(ctx, r.key(s.ID), body, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	bs, err := r.RDB.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, fmt.Errorf("load session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(bs, &rs); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return model.Session{ID: id, UserID: rs.UserID, ExpiresAt: rs.ExpiresAt, CreatedAt: rs.CreatedAt}, nil
}

func (r *RedisSessionRepo) Revoke(ctx context.Context, id string) error {
	if err := r.RDB.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
