// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLevel(ctx context.Context, id string, level access.Level) (*User, error)
	UpdateAvatar(ctx context.Context, id, avatar, thumbnail string) (*User, error)
	IncrementTokenVersion(ctx context.Context, id string) error
	SetURLHash(ctx context.Context, email, urlHash string) (*User, error)
	ConfirmEmail(ctx context.Context, urlHash string) (*User, error)
	RestorePassword(ctx context.Context, urlHash, passwordHash string) (*User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, password_hash, avatar, thumbnail, is_active, is_staff,
	is_superuser, email_confirmed, url_hash, level, token_version,
	date_joined, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, avatar, thumbnail, url_hash, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		user.Thumbnail,
		user.URLHash,
		user.Level,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	args ...any,
) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) || core.IsMalformedID(err) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) UpdateLevel(
	ctx context.Context,
	id string,
	level access.Level,
) (*User, error) {
	return r.getOne(ctx, "update level", `
		UPDATE users
		SET level = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, level)
}

func (r *repository) UpdateAvatar(
	ctx context.Context,
	id, avatar, thumbnail string,
) (*User, error) {
	return r.getOne(ctx, "update avatar", `
		UPDATE users
		SET avatar = $2, thumbnail = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, avatar, thumbnail)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment token version", query, id)
}

func (r *repository) SetURLHash(
	ctx context.Context,
	email, urlHash string,
) (*User, error) {
	return r.getOne(ctx, "set url hash", `
		UPDATE users
		SET url_hash = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING `+userColumns, email, urlHash)
}

// ConfirmEmail consumes urlHash. The conditional UPDATE lets exactly one
// caller win; everyone after gets ErrNotFound.
func (r *repository) ConfirmEmail(ctx context.Context, urlHash string) (*User, error) {
	return r.getOne(ctx, "confirm email", `
		UPDATE users
		SET email_confirmed = TRUE, url_hash = NULL, updated_at = NOW()
		WHERE url_hash = $1
		RETURNING `+userColumns, urlHash)
}

// RestorePassword consumes urlHash and sets the new password. The token
// version bump kills issued access tokens and every live refresh token of
// the account is revoked in the same statement.
func (r *repository) RestorePassword(
	ctx context.Context,
	urlHash, passwordHash string,
) (*User, error) {
	return r.getOne(ctx, "restore password", `
		WITH restored AS (
			UPDATE users
			SET password_hash = $2, url_hash = NULL,
			    token_version = token_version + 1, updated_at = NOW()
			WHERE url_hash = $1
			RETURNING `+userColumns+`
		), revoked AS (
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE user_id IN (SELECT id FROM restored) AND revoked_at IS NULL
		)
		SELECT `+userColumns+` FROM restored`, urlHash, passwordHash)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if core.IsMalformedID(err) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Level != nil {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argIdx))
		args = append(args, *params.Level)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM users ` + whereClause

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY date_joined DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
