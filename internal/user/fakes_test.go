// AngelaMos | 2026
// fakes_test.go

package user

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type memRepo struct {
	mu        sync.Mutex
	users     map[string]*User
	avatarErr error
}

func newMemRepo(users ...*User) *memRepo {
	m := &memRepo{users: map[string]*User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return core.ErrDuplicateKey
		}
	}
	user.IsActive = true
	user.DateJoined = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memRepo) find(pred func(*User) bool) *User {
	for _, u := range m.users {
		if pred(u) {
			return u
		}
	}
	return nil
}

func (m *memRepo) byID(id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.byID(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(u *User) bool { return u.Email == email })
	if u == nil {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.byID(id)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memRepo) UpdateLevel(_ context.Context, id string, level access.Level) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.byID(id)
	if err != nil {
		return nil, err
	}
	u.Level = level
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdateAvatar(_ context.Context, id, avatar, thumbnail string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.avatarErr != nil {
		return nil, m.avatarErr
	}
	u, err := m.byID(id)
	if err != nil {
		return nil, err
	}
	u.Avatar, u.Thumbnail = avatar, thumbnail
	cp := *u
	return &cp, nil
}

func (m *memRepo) IncrementTokenVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.byID(id)
	if err != nil {
		return err
	}
	u.TokenVersion++
	return nil
}

func (m *memRepo) SetURLHash(_ context.Context, email, urlHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(u *User) bool { return u.Email == email })
	if u == nil {
		return nil, core.ErrNotFound
	}
	u.URLHash = &urlHash
	cp := *u
	return &cp, nil
}

func (m *memRepo) consume(urlHash string) *User {
	return m.find(func(u *User) bool {
		return u.URLHash != nil && *u.URLHash == urlHash
	})
}

func (m *memRepo) ConfirmEmail(_ context.Context, urlHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.consume(urlHash)
	if u == nil {
		return nil, core.ErrNotFound
	}
	u.EmailConfirmed = true
	u.URLHash = nil
	cp := *u
	return &cp, nil
}

func (m *memRepo) RestorePassword(_ context.Context, urlHash, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.consume(urlHash)
	if u == nil {
		return nil, core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.URLHash = nil
	u.TokenVersion++
	cp := *u
	return &cp, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	params.Normalize()

	var all []User
	for _, u := range m.users {
		if params.Search != "" && !strings.Contains(u.Email, params.Search) {
			continue
		}
		if params.Level != nil && u.Level != *params.Level {
			continue
		}
		all = append(all, *u)
	}

	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

type sentReset struct {
	to, urlHash string
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentReset
}

func (m *memMailer) SendPasswordReset(_ context.Context, to, urlHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentReset{to: to, urlHash: urlHash})
	return nil
}

type memObjects struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPrefix string
}

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPrefix != "" && strings.HasPrefix(key, m.failPrefix) {
		return errors.New("storage unavailable")
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memObjects) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// fixture seeds one regular user with a pending hash and one admin.
func fixture() (*Service, *memRepo, *memMailer, *memObjects) {
	repo := newMemRepo(
		&User{
			ID:           "u-1",
			Email:        "alice@example.com",
			PasswordHash: "old",
			Avatar:       DefaultAvatar,
			Thumbnail:    DefaultThumbnail,
			IsActive:     true,
			URLHash:      strPtr("confirm-hash"),
			Level:        access.LevelBasic,
		},
		&User{
			ID:       "admin-1",
			Email:    "root@example.com",
			IsActive: true,
			IsStaff:  true,
			Level:    access.LevelPremium,
		},
	)
	mailer := &memMailer{}
	objects := &memObjects{}

	return NewService(repo, mailer, objects, testLogger()), repo, mailer, objects
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 20, G: uint8(y % 256), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
