// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/roster-api/internal/config"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) core.Envelope {
	t.Helper()
	var env core.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthenticator(t *testing.T) {
	claims := &AccessTokenClaims{UserID: "u-1", Role: RoleAdmin, Level: 2}

	var seen context.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		verifier   stubVerifier
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "expired",
			header:     "Bearer abc",
			verifier:   stubVerifier{err: core.ErrTokenExpired},
			wantStatus: http.StatusForbidden,
			wantCode:   "TOKEN_EXPIRED",
		},
		{
			name:       "revoked",
			header:     "Bearer abc",
			verifier:   stubVerifier{err: core.ErrTokenRevoked},
			wantStatus: http.StatusForbidden,
			wantCode:   "TOKEN_REVOKED",
		},
		{
			name:       "valid",
			header:     "bearer abc",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticator(tt.verifier)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rec).Code)
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "u-1", GetUserID(seen))
			assert.Equal(t, 2, GetUserLevel(seen))
			assert.True(t, IsAdmin(seen))
			assert.Same(t, claims, GetClaims(seen))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for role, want := range map[string]int{
		"":        http.StatusUnauthorized,
		"user":    http.StatusForbidden,
		RoleAdmin: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))
		rec := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Len(t, got, 36)
	assert.Equal(t, got, rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins:   []string{"http://app.local"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Api-Key"},
		AllowCredentials: true,
		MaxAge:           60,
	}
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/characters", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/characters", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type tokenTable map[string]*AccessTokenClaims

func (t tokenTable) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, core.ErrTokenInvalid
}

func TestCatalogLimiterIgnoresUnverifiedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, RateLimitConfig{
		Limit:    PerMinute(2, 2),
		KeyFunc:  KeyByUser,
		FailOpen: true,
	})
	verifier := tokenTable{"good": {UserID: "u-9", Role: "user"}}
	h := OptionalAuth(verifier)(rl.Handler(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	call := func(apiKey, bearer string) int {
		req := httptest.NewRequest(http.MethodGet, "/characters", nil)
		req.RemoteAddr = "10.0.0.7:4321"
		req.Header.Set(APIKeyHeader, apiKey)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("bogus-a", ""))
	assert.Equal(t, http.StatusOK, call("bogus-b", ""))
	assert.Equal(t, http.StatusTooManyRequests, call("bogus-c", ""))
	assert.Equal(t, http.StatusTooManyRequests, call("bogus-d", "forged"))
	assert.Equal(t, http.StatusOK, call("bogus-e", "good"))

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "bogus")
	}
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/users/42", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set(APIKeyHeader, "k1")

	assert.Equal(t, "ratelimit:ip:10.0.0.1", KeyByIP(req))
	assert.Equal(t, "ratelimit:ip:10.0.0.1", KeyByUser(req))
	assert.Equal(t,
		"ratelimit:ip:10.0.0.1:endpoint:/admin/users/{id}",
		KeyByUserAndEndpoint(req),
	)

	req = req.WithContext(withClaims(req.Context(), &AccessTokenClaims{UserID: "u-1"}))
	assert.True(t, IsAuthenticated(req.Context()))
	assert.Equal(t, "ratelimit:user:u-1", KeyByUser(req))
	assert.Equal(t,
		"ratelimit:user:u-1:endpoint:/admin/users/{id}",
		KeyByUserAndEndpoint(req),
	)

	assert.Equal(t, time.Hour, PerHour(5, 5).Period)
}
