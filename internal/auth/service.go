// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrAlreadyLoggedOut   = errors.New("refresh token already revoked")
)

type Service struct {
	store     Store
	jwt       *JWTManager
	users     UserProvider
	blacklist Blacklist
	mailer    ConfirmMailer
	logger    *slog.Logger
}

func NewService(
	store Store,
	jwt *JWTManager,
	users UserProvider,
	blacklist Blacklist,
	mailer ConfirmMailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist,
		mailer:    mailer,
		logger:    logger,
	}
}

type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Register creates the account, mails a confirmation link and signs the
// new user in. A failed confirmation email does not fail registration.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client ClientInfo,
) (*TokenResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	urlHash := core.NewURLHash()

	user, err := s.users.Create(ctx, req.Email, passwordHash, urlHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendConfirmEmail(ctx, user.Email, urlHash); err != nil {
		s.logger.Warn("confirmation email not sent",
			"user_id", user.ID,
			"error", err,
		)
	}

	resp, _, err := s.issueTokens(ctx, s.store, user, client, "")
	return resp, err
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client ClientInfo,
) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalises timing for unknown emails
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid || !user.IsActive {
		s.logger.Info("login rejected", "email", user.Email)
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	resp, _, err := s.issueTokens(ctx, s.store, user, client, "")
	return resp, err
}

// Refresh rotates a refresh token. Presenting an already rotated token
// revokes every token of its family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client ClientInfo,
) (*TokenResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	var (
		resp  *TokenResponse
		reuse bool
	)

	err := s.store.WithTx(ctx, func(repo Repository) error {
		stored, err := repo.LockByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
			}
			return err
		}

		if stored.IsUsed {
			reuse = true
			return repo.RevokeByFamilyID(ctx, stored.FamilyID)
		}

		if stored.IsRevoked() {
			return fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		if stored.IsExpired() {
			return fmt.Errorf("refresh: %w", core.ErrTokenExpired)
		}

		user, err := s.users.GetByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
			}
			return fmt.Errorf("get user: %w", err)
		}
		if !user.IsActive {
			return fmt.Errorf("refresh: inactive user: %w", core.ErrTokenInvalid)
		}

		var newID string
		resp, newID, err = s.issueTokens(ctx, repo, user, client, stored.FamilyID)
		if err != nil {
			return err
		}

		return repo.MarkAsUsed(ctx, stored.ID, newID)
	})
	if err != nil {
		return nil, err
	}

	if reuse {
		s.logger.Warn("refresh token reuse detected, family revoked")
		return nil, ErrTokenReuse
	}

	return resp, nil
}

// Logout revokes the refresh token and blacklists the access token the
// request was made with.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	stored, err := s.store.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ValidationError(core.FieldErrors{
				"refresh": "token is invalid",
			})
		}
		return fmt.Errorf("find token: %w", err)
	}

	if stored.UserID != claims.UserID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if stored.IsRevoked() {
		return fmt.Errorf("logout: %w", ErrAlreadyLoggedOut)
	}

	if err := s.store.RevokeByID(ctx, stored.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("logout: %w", ErrAlreadyLoggedOut)
		}
		return fmt.Errorf("revoke token: %w", err)
	}

	if err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// LogoutAll revokes every refresh token and invalidates issued access
// tokens by bumping the account's token version.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.store.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return core.ValidationError(core.FieldErrors{
			"old_password": "wrong password",
		})
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// VerifyAccessToken is the middleware.TokenVerifier used by the
// authenticator: signature, blacklist, account state and token version.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("verify token: inactive user: %w", core.ErrTokenInvalid)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	claims.Level = int(user.Level)

	return claims, nil
}

// PurgeExpired deletes refresh tokens that expired more than retain ago.
func (s *Service) PurgeExpired(ctx context.Context, retain time.Duration) (int64, error) {
	return s.store.DeleteExpired(ctx, retain)
}

func (s *Service) issueTokens(
	ctx context.Context,
	repo Repository,
	user *UserInfo,
	client ClientInfo,
	familyID string,
) (*TokenResponse, string, error) {
	accessToken, err := s.jwt.CreateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.newRefreshToken(familyID)
	if err != nil {
		return nil, "", fmt.Errorf("create refresh token: %w", err)
	}

	entity := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}

	if err := repo.Create(ctx, entity); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenResponse{
		Access:  accessToken,
		Refresh: refresh.Token,
	}, entity.ID, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
