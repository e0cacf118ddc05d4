package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 500
)

var validate = validator.New()

type errorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps an application error code onto an HTTP status.
func statusFor(code string) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fieldErr := range ve {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "validation failed",
			Code:    apperr.CodeValidation,
			Fields:  fields,
		})
		return
	}

	code := apperr.Code(err)
	status := statusFor(code)
	message := err.Error()
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Message: message, Code: code})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return validate.Struct(dst)
}

// pageFromQuery reads ?limit and ?skip.
func pageFromQuery(r *http.Request) repository.Page {
	page := repository.Page{Limit: defaultPageLimit}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		page.Limit = min(limit, maxPageLimit)
	}
	if skip, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && skip > 0 {
		page.Skip = skip
	}
	return page
}

// hasMore reports whether rows remain after the returned window.
func hasMore(page repository.Page, returned int, total int64) bool {
	return total > int64(page.Skip+returned)
}
