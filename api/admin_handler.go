package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-backoffice/models"

	"go.uber.org/zap"
)

type addStaffRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	HourlyRate int64  `json:"hourly_rate"`
}

// staffWithPIN is returned only by the calls that create a PIN.
type staffWithPIN struct {
	Staff *models.Staff `json:"staff,omitempty"`
	PIN   string        `json:"pin"`
}

type addStockRequest struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorder_level"`
}

type addPayrollRequest struct {
	StaffID     int64   `json:"staff_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Hours       float64 `json:"hours"`
}

func (s *Server) addStaff(w http.ResponseWriter, r *http.Request) {
	var req addStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	st, pin, err := s.store.AddStaff(ctx, req.FullName, req.Phone, req.Role, req.HourlyRate)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.log.Info("staff added",
		zap.Int64("staff_id", st.ID), zap.String("role", st.Role),
		zap.Int64("by", sessionFrom(r.Context()).StaffID))
	s.respondJSON(w, http.StatusCreated, staffWithPIN{Staff: st, PIN: pin})
}

func (s *Server) deactivateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	if id == sessionFrom(r.Context()).StaffID {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "cannot deactivate yourself")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if err := s.store.DeactivateStaff(ctx, id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	revoked, err := s.sessions.RevokeStaff(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.log.Info("staff deactivated", zap.Int64("staff_id", id), zap.Int("sessions_revoked", revoked))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetPIN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	pin, err := s.store.ResetPIN(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	revoked, err := s.sessions.RevokeStaff(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.log.Info("staff pin reset", zap.Int64("staff_id", id), zap.Int("sessions_revoked", revoked))
	s.respondJSON(w, http.StatusOK, staffWithPIN{PIN: pin})
}

func (s *Server) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addStockItem(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.ReorderLevel < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "quantity and reorder_level must be >= 0")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	id, err := s.store.AddStockItem(ctx, req.Name, req.Unit, req.Quantity, req.ReorderLevel)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) stockMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			s.respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	moves, err := s.store.ListStockMovements(ctx, id, limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(moves))
}

func (s *Server) addPayrollEntry(w http.ResponseWriter, r *http.Request) {
	var req addPayrollRequest
	if err := decodeJSON(r, &req); err != nil || req.StaffID <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "staff_id, period_start, period_end and hours are required")
		return
	}
	start, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_date", "period_start must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_date", "period_end must be YYYY-MM-DD")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	e, err := s.store.AddPayrollEntry(ctx, req.StaffID, start, end, req.Hours)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, e)
}

func (s *Server) setPayrollStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Status) == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if err := s.store.SetPayrollStatus(ctx, id, req.Status); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.log.Info("payroll status changed",
		zap.Int64("entry_id", id), zap.String("status", req.Status),
		zap.Int64("by", sessionFrom(r.Context()).StaffID))
	w.WriteHeader(http.StatusNoContent)
}
