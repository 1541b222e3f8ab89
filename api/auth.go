package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"restaurant-backoffice/cache"
	"restaurant-backoffice/models"

	"go.uber.org/zap"
)

type ctxKey int

const (
	sessionCtxKey ctxKey = iota
	tokenCtxKey
)

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type loginResponse struct {
	Token string         `json:"token"`
	Staff models.Session `json:"staff"`
}

type selectTableRequest struct {
	TableID int64 `json:"table_id"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" || req.PIN == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "phone and pin are required")
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	st, err := s.store.AuthenticatePIN(ctx, req.Phone, req.PIN)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	sess := models.Session{StaffID: st.ID, StaffName: st.FullName, Role: st.Role}
	token, err := s.sessions.Create(ctx, sess)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.log.Info("staff login", zap.Int64("staff_id", st.ID), zap.String("role", st.Role))
	s.respondJSON(w, http.StatusOK, loginResponse{Token: token, Staff: sess})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(tokenCtxKey).(string)
	if err := s.sessions.Delete(r.Context(), token); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// selectTable makes table_id the session's current table for cart calls
// that do not name one.
func (s *Server) selectTable(w http.ResponseWriter, r *http.Request) {
	var req selectTableRequest
	if err := decodeJSON(r, &req); err != nil || req.TableID <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "table_id must be a positive integer")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if _, err := s.store.GetTable(ctx, req.TableID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	sess := sessionFrom(r.Context())
	sess.TableID = req.TableID
	token, _ := r.Context().Value(tokenCtxKey).(string)
	if err := s.sessions.Update(ctx, token, sess); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

// authenticate resolves "Authorization: Bearer <token>" into a session.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			s.respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		sess, err := s.sessions.Get(r.Context(), token)
		if err != nil {
			if errors.Is(err, cache.ErrSessionNotFound) {
				s.respondError(w, http.StatusUnauthorized, "unauthorized", "session expired")
				return
			}
			s.respondServiceError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey, *sess)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).IsManager() {
			s.respondError(w, http.StatusForbidden, "forbidden", "manager role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(ctx context.Context) models.Session {
	sess, _ := ctx.Value(sessionCtxKey).(models.Session)
	return sess
}
