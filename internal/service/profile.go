package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/repository"
	"github.com/iliyamo/csvboard/internal/storage"
	"github.com/iliyamo/csvboard/internal/utils"
)

var avatarExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// AvatarUpload is a new avatar image as received from the client.
type AvatarUpload struct {
	Filename string
	Data     []byte
}

// ProfileUpdate lists the requested changes. Empty strings and a nil Avatar
// mean "leave as is". Any non-empty password field requests a password
// change, which is validated before anything is written.
type ProfileUpdate struct {
	Email       string
	DisplayName string
	Bio         string
	Avatar      *AvatarUpload

	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (u ProfileUpdate) wantsPasswordChange() bool {
	return u.CurrentPassword != "" || u.NewPassword != "" || u.ConfirmPassword != ""
}

// ProfileService reads and edits the user's own profile.
type ProfileService struct {
	users      repository.UserStore
	files      repository.FileStore
	blobs      storage.BlobStore
	events     queue.Publisher
	log        *zap.Logger
	bcryptCost int
}

func NewProfileService(users repository.UserStore, files repository.FileStore, blobs storage.BlobStore, events queue.Publisher, log *zap.Logger, bcryptCost int) *ProfileService {
	return &ProfileService{users: users, files: files, blobs: blobs, events: events, log: log, bcryptCost: bcryptCost}
}

func (s *ProfileService) loadUser(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// GetProfile returns the profile view with the file count computed now.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	n, err := s.files.CountByOwner(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("count files: %w", err)
	}
	return model.Profile{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		Theme:       u.Theme,
		FileCount:   n,
		JoinedAt:    u.CreatedAt,
	}, nil
}

// UpdateProfile applies upd in one store write. Validation failures, a
// wrong current password included, leave the account untouched.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	var change model.UserUpdate
	if upd.wantsPasswordChange() {
		hash, err := s.checkPasswordChange(u, upd.CurrentPassword, upd.NewPassword, upd.ConfirmPassword)
		if err != nil {
			return err
		}
		change.PasswordHash = &hash
	}

	var avatarName string
	if upd.Avatar != nil {
		avatarName = utils.SecureFilename(upd.Avatar.Filename)
		if avatarName == "" || !avatarExts[strings.ToLower(path.Ext(avatarName))] {
			return ErrUnsupportedType
		}
		change.Avatar = &avatarName
	}
	if upd.Email != "" {
		email := strings.TrimSpace(upd.Email)
		change.Email = &email
	}
	if upd.DisplayName != "" {
		name := strings.TrimSpace(upd.DisplayName)
		change.DisplayName = &name
	}
	if upd.Bio != "" {
		change.Bio = &upd.Bio
	}
	if change.Empty() {
		return ErrNothingToUpdate
	}

	if upd.Avatar != nil {
		if err := s.blobs.Put(ctx, storage.AvatarKey(userID, avatarName), upd.Avatar.Data); err != nil {
			return fmt.Errorf("store avatar: %w", err)
		}
	}
	if err := s.users.Update(ctx, userID, change); err != nil {
		if upd.Avatar != nil && avatarName != u.Avatar {
			s.dropAvatar(ctx, userID, avatarName)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if upd.Avatar != nil && u.Avatar != "" && u.Avatar != avatarName {
		s.dropAvatar(ctx, userID, u.Avatar)
	}

	s.log.Info("profile updated", zap.String("user_id", userID), zap.Bool("password_changed", change.PasswordHash != nil))
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventProfileUpdated, UserID: userID, Username: u.Username})
	return nil
}

// ChangePassword changes only the password, under the same rules as
// UpdateProfile.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := s.checkPasswordChange(u, current, newPassword, confirm)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, userID, model.UserUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventProfileUpdated, UserID: userID, Username: u.Username, Detail: "password"})
	return nil
}

// checkPasswordChange verifies the current password first, then the new
// pair, and returns the hash of the new password.
func (s *ProfileService) checkPasswordChange(u model.User, current, newPassword, confirm string) (string, error) {
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return "", ErrIncorrectPassword
	}
	if newPassword != confirm {
		return "", ErrPasswordMismatch
	}
	if newPassword == "" {
		return "", ErrValidation
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// SetTheme stores the user's theme. Setting the current theme again is fine.
func (s *ProfileService) SetTheme(ctx context.Context, userID, theme string) error {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return ErrValidation
	}
	if err := s.users.Update(ctx, userID, model.UserUpdate{Theme: &theme}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set theme: %w", err)
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{Type: queue.EventThemeUpdated, UserID: userID, Detail: theme})
	return nil
}

// Avatar returns the bytes of the user's avatar called filename.
func (s *ProfileService) Avatar(ctx context.Context, userID, filename string) ([]byte, error) {
	name := utils.SecureFilename(filename)
	if name == "" {
		return nil, ErrNotFound
	}
	data, err := s.blobs.Get(ctx, storage.AvatarKey(userID, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	return data, nil
}

func (s *ProfileService) dropAvatar(ctx context.Context, userID, name string) {
	if err := s.blobs.Delete(ctx, storage.AvatarKey(userID, name)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.log.Warn("avatar delete failed", zap.String("user_id", userID), zap.String("avatar", name), zap.Error(err))
	}
}
