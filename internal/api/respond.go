package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/identity"
	"shareit/internal/logging"
	"shareit/internal/models"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError translates service errors into HTTP responses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context(), s.logger).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, identity.ErrMissing):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.BadRequestf("request body is required")
		}
		return domain.BadRequestf("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequestf("%s must be a number, got %q", name, raw)
	}
	return id, nil
}

// pageParams reads from/size; unusable values fall back to the defaults.
func pageParams(r *http.Request) models.Page {
	q := r.URL.Query()
	page := models.Page{From: models.DefaultFrom, Size: models.DefaultPageSize}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("from"))); err == nil {
		page.From = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("size"))); err == nil {
		page.Size = v
	}
	return page.Normalize()
}

func parseApproved(r *http.Request) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("approved"))
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.BadRequestf("approved must be true or false, got %q", raw)
	}
	return approved, nil
}

// caller returns the id of the authenticated sharer.
func caller(r *http.Request) (int64, error) {
	user, err := identity.Require(r.Context())
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
