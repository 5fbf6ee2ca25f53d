// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/auth"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/storage"
)

type PasswordResetMailer interface {
	SendPasswordReset(ctx context.Context, to, urlHash string) error
}

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

type Service struct {
	repo    Repository
	mailer  PasswordResetMailer
	objects ObjectStore
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	mailer PasswordResetMailer,
	objects ObjectStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		mailer:  mailer,
		objects: objects,
		logger:  logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, urlHash string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Avatar:       DefaultAvatar,
		Thumbnail:    DefaultThumbnail,
		IsActive:     true,
		Level:        access.DefaultLevel,
	}
	if urlHash != "" {
		user.URLHash = &urlHash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// UserLevel reports the tier stored on the account, which decides the API
// key handed out to it.
func (s *Service) UserLevel(ctx context.Context, userID string) (access.Level, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return access.DefaultLevel, err
	}
	return user.Level, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user removed", "user_id", userID)
	return nil
}

// UpdateAvatar stores the uploaded image and a square JPEG thumbnail and
// points the account at both. Replaced uploads are removed; the shared
// defaults never are.
func (s *Service) UpdateAvatar(ctx context.Context, userID string, r io.Reader) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update avatar: %w", core.ErrUnauthorized)
	}

	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	img, err := storage.DecodeImage(r)
	if err != nil {
		return nil, fmt.Errorf("update avatar: %w", core.ErrInvalidInput)
	}

	original, err := storage.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	thumb, err := storage.EncodeJPEG(storage.Thumbnail(img))
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + ".jpeg"
	avatarKey := "avatars/" + userID + "/" + name
	thumbKey := "thumbnails/" + userID + "/" + name

	if err := s.objects.Put(ctx, avatarKey, original, "image/jpeg"); err != nil {
		return nil, err
	}
	if err := s.objects.Put(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		s.removeUploads(context.WithoutCancel(ctx), userID, avatarKey)
		return nil, err
	}

	user, err := s.repo.UpdateAvatar(ctx, userID, avatarKey, thumbKey)
	if err != nil {
		s.removeUploads(context.WithoutCancel(ctx), userID, avatarKey, thumbKey)
		return nil, err
	}

	s.removeUploads(ctx, userID, current.Avatar, current.Thumbnail)

	s.logger.Info("user avatar updated", "user_id", userID)
	return user, nil
}

func (s *Service) removeUploads(ctx context.Context, userID string, keys ...string) {
	for _, key := range keys {
		if key == "" || key == DefaultAvatar || key == DefaultThumbnail {
			continue
		}
		if err := s.objects.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove upload",
				"user_id", userID,
				"key", key,
				"error", err,
			)
		}
	}
}

// ConfirmEmail consumes a confirmation hash. A hash works once.
func (s *Service) ConfirmEmail(ctx context.Context, urlHash string) (*User, error) {
	user, err := s.repo.ConfirmEmail(ctx, urlHash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user email confirmed", "user_id", user.ID)
	return user, nil
}

// RequestPasswordRestore issues a fresh restore hash and mails the link.
// An unknown email is a business-rule conflict rather than a 404.
func (s *Service) RequestPasswordRestore(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.repo.SetURLHash(ctx, email, core.NewURLHash())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ConflictError("no account with this email")
		}
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, *user.URLHash); err != nil {
		return fmt.Errorf("request password restore: %w", err)
	}

	s.logger.Info("password restore requested", "user_id", user.ID)
	return nil
}

func (s *Service) RestorePassword(ctx context.Context, urlHash, newPassword string) error {
	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.RestorePassword(ctx, urlHash, passwordHash)
	if err != nil {
		return err
	}

	s.logger.Info("password restored", "user_id", user.ID)
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) UpdateUserLevel(
	ctx context.Context,
	id string,
	level access.Level,
) (*User, error) {
	if !level.Valid() {
		return nil, fmt.Errorf(
			"update level: invalid level %d: %w",
			level,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.UpdateLevel(ctx, id, level)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user level changed", "user_id", id, "level", level.Label())
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CanDeleteUser lets a user remove themselves and admins remove
// non-admins.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role(),
		Level:        u.Level,
		IsActive:     u.IsActive,
		TokenVersion: u.TokenVersion,
	}
}

var (
	_ auth.UserProvider    = (*Service)(nil)
	_ access.LevelProvider = (*Service)(nil)
)
