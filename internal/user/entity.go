// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
)

const (
	DefaultAvatar    = "avatars/default.jpeg"
	DefaultThumbnail = "thumbnails/default.jpeg"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string       `db:"id"`
	Email          string       `db:"email"`
	PasswordHash   string       `db:"password_hash"`
	Avatar         string       `db:"avatar"`
	Thumbnail      string       `db:"thumbnail"`
	IsActive       bool         `db:"is_active"`
	IsStaff        bool         `db:"is_staff"`
	IsSuperuser    bool         `db:"is_superuser"`
	EmailConfirmed bool         `db:"email_confirmed"`
	URLHash        *string      `db:"url_hash"`
	Level          access.Level `db:"level"`
	TokenVersion   int          `db:"token_version"`
	DateJoined     time.Time    `db:"date_joined"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

func (u *User) Role() string {
	if u.IsAdmin() {
		return RoleAdmin
	}
	return RoleUser
}
