// AngelaMos | 2026
// handler.go

package access

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
)

// LevelProvider reports the tier stored on an account.
type LevelProvider interface {
	UserLevel(ctx context.Context, userID string) (Level, error)
}

type Handler struct {
	service   *Service
	users     LevelProvider
	validator *core.Validator
}

func NewHandler(service *Service, users LevelProvider) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/characters/get_key", h.GetKey)
}

// GetKey hands the caller the API key for their account's tier.
func (h *Handler) GetKey(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	level, err := h.users.UserLevel(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	key, err := h.service.GetOrCreateKey(r.Context(), level)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, APIKeyResponse{APIKey: key.Key})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/keys", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListKeys)
		r.Post("/", h.ProvisionKey)
		r.Patch("/{key}", h.SetActive)
	})
}

func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.ListKeys(r.Context())
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToKeyResponses(keys))
}

func (h *Handler) ProvisionKey(w http.ResponseWriter, r *http.Request) {
	var req ProvisionKeyRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	level := Level(*req.Level)
	if !level.Valid() {
		core.ValidationFailed(w, core.FieldErrors{"level": "unknown access level"})
		return
	}

	key, err := h.service.GetOrCreateKey(r.Context(), level)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToKeyResponse(key))
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	apiKey := chi.URLParam(r, "key")

	var req SetActiveRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	key, err := h.service.SetKeyActive(r.Context(), apiKey, *req.IsActive)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "access key")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToKeyResponse(key))
}
