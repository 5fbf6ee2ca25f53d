// AngelaMos | 2026
// handler.go

package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
)

const maxImageUpload = 10 << 20

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

// RegisterRoutes mounts the public catalog. limiter guards both routes and
// may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}

		r.Get("/characters", h.List)
		r.Post("/characters", h.ListByIDs)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	chars, err := h.service.ListByLevel(r.Context(), middleware.GetAPIKey(r))
	if err != nil {
		h.writeGateError(w, r, err)
		return
	}

	core.OK(w, ToCharacterResponses(chars, h.urlFor))
}

func (h *Handler) ListByIDs(w http.ResponseWriter, r *http.Request) {
	var req ByIDsRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	chars, err := h.service.ListByIDs(
		r.Context(),
		middleware.GetAPIKey(r),
		req.CharacterIDs,
	)
	if err != nil {
		h.writeGateError(w, r, err)
		return
	}

	core.OK(w, ToCharacterResponses(chars, h.urlFor))
}

func (h *Handler) writeGateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "api key")
		return
	}
	core.InternalServerError(w, r, err)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/characters", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.AdminList)
		r.Post("/", h.Create)
		r.Post("/availability", h.SetAvailability)
		r.Patch("/{characterID}", h.Update)
		r.Put("/{characterID}/image", h.UploadImage)
	})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	var level *access.Level
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := access.ParseLevel(raw)
		if err != nil {
			core.ValidationFailed(w, core.FieldErrors{"level": "unknown access level"})
			return
		}
		level = &parsed
	}

	chars, err := h.service.ListAll(r.Context(), level)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToCharacterResponses(chars, h.urlFor))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCharacterRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("name"))
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToCharacterResponse(c, h.urlFor))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}

	var req UpdateCharacterRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "character")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("name"))
		default:
			core.InternalServerError(w, r, err)
		}
		return
	}

	core.OK(w, ToCharacterResponse(c, h.urlFor))
}

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req SetAvailabilityRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if fields := h.validator.Struct(req); fields != nil {
		core.ValidationFailed(w, fields)
		return
	}

	n, err := h.service.SetAvailability(r.Context(), req.IDs, *req.IsAvailable)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, SetAvailabilityResponse{Updated: n})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	file, _, err := r.FormFile("image")
	if err != nil {
		core.ValidationFailed(w, core.FieldErrors{"image": "this field is required"})
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart file

	c, err := h.service.UploadImage(r.Context(), id, file)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "character")
		case errors.Is(err, core.ErrInvalidInput):
			core.ValidationFailed(w, core.FieldErrors{"image": "must be a valid image"})
		default:
			core.InternalServerError(w, r, err)
		}
		return
	}

	core.OK(w, ToCharacterResponse(c, h.urlFor))
}

func characterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil || id < 1 {
		core.BadRequest(w, "invalid character id")
		return 0, false
	}
	return id, true
}
