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
	"github.com/iliyamo/csvboard/internal/utils"
)

// AuthOptions configures AuthService.
type AuthOptions struct {
	Secret     string        // HMAC key for session tokens
	TTL        time.Duration // session lifetime
	BcryptCost int
}

// AuthService registers accounts and manages login sessions. A session token
// authenticates only while its server-side session record is active.
type AuthService struct {
	users    repository.UserStore
	sessions repository.SessionStore
	events   queue.Publisher
	log      *zap.Logger
	opts     AuthOptions
	now      func() time.Time
}

func NewAuthService(users repository.UserStore, sessions repository.SessionStore, events queue.Publisher, log *zap.Logger, opts AuthOptions) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &AuthService{users: users, sessions: sessions, events: events, log: log, opts: opts, now: time.Now}
}

// Register creates an account with the default theme and returns its id.
// Usernames are trimmed and case-sensitive.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrValidation
	}
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Theme:        model.DefaultTheme,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrUsernameTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventUserRegistered, UserID: u.ID, Username: u.Username})
	return u.ID, nil
}

// Authenticate checks the credentials, opens a session and returns its
// signed token. Unknown users and wrong passwords yield the same
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (utils.SessionToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return utils.SessionToken{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password, s.opts.BcryptCost)
			return utils.SessionToken{}, ErrInvalidCredentials
		}
		return utils.SessionToken{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.SessionToken{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := model.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.opts.TTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return utils.SessionToken{}, fmt.Errorf("create session: %w", err)
	}
	tok, err := utils.NewSessionToken(s.opts.Secret, u.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return utils.SessionToken{}, fmt.Errorf("sign session: %w", err)
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventUserLoggedIn, UserID: u.ID, Username: u.Username})
	return tok, nil
}

// CurrentIdentity resolves token to a user id. It reports false for
// malformed, badly signed or expired tokens and for sessions that are
// unknown, revoked or expired server-side.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (string, bool) {
	claims, err := utils.ParseSessionToken(s.opts.Secret, token)
	if err != nil {
		return "", false
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("session lookup failed", zap.String("session_id", claims.SessionID), zap.Error(err))
		}
		return "", false
	}
	if sess.UserID != claims.UserID || !sess.Active(s.now()) {
		return "", false
	}
	return sess.UserID, true
}

// EndSession revokes the session behind token. Invalid tokens and sessions
// that are already gone are a no-op.
func (s *AuthService) EndSession(ctx context.Context, token string) error {
	claims, err := utils.ParseSessionToken(s.opts.Secret, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
