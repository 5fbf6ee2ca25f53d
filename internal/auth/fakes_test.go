// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/config"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type memStore struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemStore() *memStore {
	return &memStore{tokens: map[string]*RefreshToken{}}
}

func (m *memStore) WithTx(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

func (m *memStore) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memStore) FindByHash(_ context.Context, tokenHash string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memStore) LockByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	return m.FindByHash(ctx, tokenHash)
}

func (m *memStore) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.IsUsed {
		return core.ErrNotFound
	}
	now := time.Now()
	t.IsUsed, t.UsedAt, t.ReplacedByID = true, &now, &replacedByID
	return nil
}

func (m *memStore) RevokeByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (m *memStore) revokeWhere(pred func(*RefreshToken) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.RevokedAt == nil && pred(t) {
			t.RevokedAt = &now
		}
	}
}

func (m *memStore) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memStore) RevokeAllForUser(_ context.Context, userID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memStore) DeleteExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for id, t := range m.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, email, passwordHash, _ string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	u := &UserInfo{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "user",
		Level:        access.DefaultLevel,
		IsActive:     true,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) IncrementTokenVersion(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type memMailer struct {
	mu   sync.Mutex
	sent map[string]string
	fail bool
}

func (m *memMailer) SendConfirmEmail(_ context.Context, to, urlHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent[to] = urlHash
	return nil
}

type testEnv struct {
	svc    *Service
	store  *memStore
	users  *memUsers
	mailer *memMailer
	jwt    *JWTManager
}

func testJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privPath,
		PublicKeyPath:      pubPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "roster-api",
		Audience:           "roster-api",
	})
	require.NoError(t, err)
	return m
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{
		store:  newMemStore(),
		users:  &memUsers{users: map[string]*UserInfo{}},
		mailer: &memMailer{sent: map[string]string{}},
		jwt:    testJWTManager(t),
	}
	env.svc = NewService(
		env.store,
		env.jwt,
		env.users,
		core.NewTokenBlacklist(rdb),
		env.mailer,
		slog.New(slog.DiscardHandler),
	)
	return env
}

func (e *testEnv) register(t *testing.T, email, password string) *TokenResponse {
	t.Helper()
	resp, err := e.svc.Register(context.Background(), RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	}, ClientInfo{UserAgent: "test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return resp
}
