// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
)

type RestoreRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type RestorePasswordRequest struct {
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type UpdateUserLevelRequest struct {
	Level *int16 `json:"level" validate:"required,min=0,max=3"`
}

type UserResponse struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Avatar         string       `json:"avatar"`
	Thumbnail      string       `json:"thumbnail"`
	EmailConfirmed bool         `json:"email_confirmed"`
	Level          access.Level `json:"level"`
	LevelLabel     string       `json:"level_label"`
	DateJoined     time.Time    `json:"date_joined"`
}

type AdminUserResponse struct {
	UserResponse
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Level    *access.Level
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// URLFunc turns a stored object key into a public URL.
type URLFunc func(key string) string

func ToUserResponse(u *User, urlFor URLFunc) UserResponse {
	avatar, thumb := u.Avatar, u.Thumbnail
	if urlFor != nil {
		avatar, thumb = urlFor(avatar), urlFor(thumb)
	}

	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Avatar:         avatar,
		Thumbnail:      thumb,
		EmailConfirmed: u.EmailConfirmed,
		Level:          u.Level,
		LevelLabel:     u.Level.Label(),
		DateJoined:     u.DateJoined,
	}
}

func ToAdminUserResponse(u *User, urlFor URLFunc) AdminUserResponse {
	return AdminUserResponse{
		UserResponse: ToUserResponse(u, urlFor),
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToAdminUserResponseList(users []User, urlFor URLFunc) []AdminUserResponse {
	responses := make([]AdminUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToAdminUserResponse(&users[i], urlFor))
	}
	return responses
}
