// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Errors  FieldErrors `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Message: "ok", Data: data})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Message: message, Data: data})
}

func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}

	JSON(w, appErr.StatusCode, Envelope{
		Message: appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Fields,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Envelope{
		Message: message,
		Code:    "BAD_REQUEST",
	})
}

func ValidationFailed(w http.ResponseWriter, fields FieldErrors) {
	JSONError(w, ValidationError(fields))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

// InternalServerError logs err with the request logger and answers 500
// without exposing the cause.
func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	LoggerFrom(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	JSONError(w, InternalError(err))
}

type Page struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Paginated(w http.ResponseWriter, items any, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	OK(w, Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}
