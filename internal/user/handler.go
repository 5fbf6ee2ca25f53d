// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
)

const maxAvatarUpload = 10 << 20

type Handler struct {
	service   *Service
	urlFor    URLFunc
	validator *core.Validator
}

func NewHandler(service *Service, urlFor URLFunc) *Handler {
	return &Handler{
		service:   service,
		urlFor:    urlFor,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the account routes. mailLimiter guards the
// password restore flow, which sends email, and may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	mailLimiter func(http.Handler) http.Handler,
) {
	r.Get("/users/confirm_email/{hash}", h.ConfirmEmail)

	r.Group(func(r chi.Router) {
		if mailLimiter != nil {
			r.Use(mailLimiter)
		}
		r.Post("/users/password_restore/request", h.RequestPasswordRestore)
		r.Post("/users/password_restore/{hash}", h.RestorePassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/users", h.GetMe)
		r.Patch("/users", h.UpdateAvatar)
		r.Delete("/users", h.DeleteMe)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(user, h.urlFor))
}

// UpdateAvatar accepts a multipart form with an "avatar" file.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUpload)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		core.ValidationFailed(w, core.FieldErrors{"avatar": "this field is required"})
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart file

	user, err := h.service.UpdateAvatar(r.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.ValidationFailed(w, core.FieldErrors{"avatar": "must be a valid image"})
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(w, r, err)
		}
		return
	}

	core.OK(w, ToUserResponse(user, h.urlFor))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.DeleteMe(r.Context(), userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKMessage(w, "user removed", nil)
}

func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.ConfirmEmail(r.Context(), chi.URLParam(r, "hash")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "confirmation link")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKMessage(w, "email confirmed", nil)
}

func (h *Handler) RequestPasswordRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	if err := h.service.RequestPasswordRestore(r.Context(), req.Email); err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKMessage(w, "password restore email sent", nil)
}

func (h *Handler) RestorePassword(w http.ResponseWriter, r *http.Request) {
	var req RestorePasswordRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	err := h.service.RestorePassword(r.Context(), chi.URLParam(r, "hash"), req.NewPassword)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "restore link")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKMessage(w, "password changed", nil)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/level", h.UpdateUserLevel)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err := access.ParseLevel(raw)
		if err != nil {
			core.ValidationFailed(w, core.FieldErrors{"level": "unknown access level"})
			return
		}
		params.Level = &level
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToAdminUserResponseList(users, h.urlFor),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.urlFor))
}

// UpdateUserLevel changes which API key the account is handed.
func (h *Handler) UpdateUserLevel(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserLevelRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	user, err := h.service.UpdateUserLevel(
		r.Context(),
		chi.URLParam(r, "userID"),
		access.Level(*req.Level),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user, h.urlFor))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.service.CanDeleteUser(r.Context(), requesterID, targetID); err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "insufficient permissions")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), targetID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKMessage(w, "user removed", nil)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
