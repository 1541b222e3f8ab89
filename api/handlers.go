package api

import (
	"net/http"
	"strings"

	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	"github.com/go-chi/chi/v5"
)

type addMenuItemRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type adjustStockRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

type orderDetail struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) listMenu(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		s.respondError(w, http.StatusBadRequest, "invalid_category", "unknown category")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	items, err := s.store.ListMenu(ctx, category)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) listModifiers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	mods, err := s.store.ListModifiers(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(mods))
}

func (s *Server) addMenuItem(w http.ResponseWriter, r *http.Request) {
	var req addMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := services.ValidateMenuItem(req.Category, req.Name, req.Price); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	id, err := s.store.AddMenuItem(ctx, req.Category, strings.TrimSpace(req.Name), req.Price)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

// listOrders returns open orders. Waiters see their own unless ?all=1.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var staffID int64
	if sess.Role == models.RoleWaiter && r.URL.Query().Get("all") != "1" {
		staffID = sess.StaffID
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	orders, err := s.store.ListOpenOrders(ctx, staffID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(orders))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	items, err := s.store.ListOrderItems(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, orderDetail{Order: *o, Items: nonNil(items)})
}

func (s *Server) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	o, err := s.desk.ChangeStatus(ctx, sessionFrom(r.Context()), id, req.Status)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, o)
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	tables, err := s.store.ListTables(ctx)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(tables))
}

func (s *Server) setTableStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil || !services.ValidTableStatus(req.Status) {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "status must be free, occupied or reserved")
		return
	}
	if sessionFrom(r.Context()).Role == models.RoleCook {
		s.respondError(w, http.StatusForbidden, "forbidden", "cooks cannot change tables")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if err := s.store.SetTableStatus(ctx, id, req.Status); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	t, err := s.store.GetTable(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) listStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	items, err := s.store.ListStock(ctx, r.URL.Query().Get("low") == "1")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil || req.Delta == 0 {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "non-zero delta is required")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	item, err := s.store.AdjustStock(ctx, sessionFrom(r.Context()), id, req.Delta, strings.TrimSpace(req.Reason))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	staff, err := s.store.ListStaff(ctx, r.URL.Query().Get("inactive") == "1")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(staff))
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
