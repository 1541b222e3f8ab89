package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"restaurant-backoffice/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var throttled *services.ThrottledError
	if errors.As(err, &throttled) {
		w.Header().Set("Retry-After", strconv.Itoa(throttled.WaitSeconds))
		s.respondError(w, http.StatusTooManyRequests, "throttled", err.Error())
		return
	}

	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.respondError(w, status, code, "internal server error")
		return
	}
	s.respondError(w, status, code, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, services.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, services.ErrItemUnavailable):
		return http.StatusConflict, "item_unavailable"
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, services.ErrInvalidPIN):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrThrottled):
		return http.StatusTooManyRequests, "throttled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal_error"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
