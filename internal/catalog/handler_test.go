// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
)

type listEnvelope struct {
	Message string              `json:"message"`
	Data    []CharacterResponse `json:"data"`
	Code    string              `json:"code"`
	Errors  map[string]string   `json:"errors"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := fixture()
	h := NewHandler(svc, func(key string) string { return "http://cdn.local/" + key })

	r := chi.NewRouter()
	h.RegisterRoutes(r, nil)
	return r
}

func do(t *testing.T, router http.Handler, method, apiKey, body string) (int, listEnvelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/characters", nil)
	} else {
		req = httptest.NewRequest(method, "/characters", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestHandlerList(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name       string
		apiKey     string
		wantStatus int
		wantIDs    []int64
	}{
		{name: "anonymous", wantStatus: http.StatusOK, wantIDs: []int64{1, 6}},
		{name: "free key", apiKey: "free-key", wantStatus: http.StatusOK, wantIDs: []int64{1, 6}},
		{name: "advanced key", apiKey: "advanced-key", wantStatus: http.StatusOK, wantIDs: []int64{1, 2, 3, 6}},
		{name: "unknown key", apiKey: "bogus", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, router, http.MethodGet, tt.apiKey, "")
			assert.Equal(t, tt.wantStatus, status)

			got := make([]int64, 0, len(env.Data))
			for _, c := range env.Data {
				got = append(got, c.ID)
			}
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestHandlerListByIDs(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name       string
		apiKey     string
		body       string
		wantStatus int
		wantIDs    []int64
	}{
		{
			name:       "filters by level and ids",
			apiKey:     "basic-key",
			body:       `{"characters_ids":[1,2,3]}`,
			wantStatus: http.StatusOK,
			wantIDs:    []int64{1, 2},
		},
		{
			name:       "non numeric id",
			body:       `{"characters_ids":[1,2,"3"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non positive id",
			body:       `{"characters_ids":[1,0]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing field",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed",
			body:       `{"characters_ids":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too many ids",
			body:       `{"characters_ids":[` + idList(1001) + `]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty list",
			body:       `{"characters_ids":[]}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown key",
			apiKey:     "bogus",
			body:       `{"characters_ids":[1]}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, router, http.MethodPost, tt.apiKey, tt.body)
			assert.Equal(t, tt.wantStatus, status)

			if status == http.StatusBadRequest {
				assert.Equal(t, "VALIDATION_ERROR", env.Code)
				assert.NotEmpty(t, env.Errors)
				assert.Empty(t, env.Data)
				return
			}

			got := make([]int64, 0, len(env.Data))
			for _, c := range env.Data {
				got = append(got, c.ID)
			}
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func idList(n int) string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return strings.Join(ids, ",")
}

func TestHandlerImageURL(t *testing.T) {
	svc, repo, _ := fixture()
	img := "characters/1/a.jpeg"
	repo.chars[0].Image = &img

	r := chi.NewRouter()
	NewHandler(svc, func(key string) string { return "http://cdn.local/" + key }).
		RegisterRoutes(r, nil)

	status, env := do(t, r, http.MethodGet, "", "")
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env.Data)
	assert.Equal(t, "http://cdn.local/characters/1/a.jpeg", env.Data[0].Image)
	assert.Equal(t, "Free", env.Data[0].LevelLabel)
}
