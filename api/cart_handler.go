package api

import (
	"net/http"
	"strconv"
	"strings"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/models"

	"github.com/go-chi/chi/v5"
)

type cartLineDTO struct {
	ID           string          `json:"id"`
	MenuItemID   string          `json:"menu_item_id"`
	Name         string          `json:"name"`
	UnitPrice    int64           `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Instructions string          `json:"instructions,omitempty"`
	Modifiers    []cart.Modifier `json:"modifiers,omitempty"`
	Subtotal     int64           `json:"subtotal"`
}

type cartResponse struct {
	TableID int64         `json:"table_id"`
	Lines   []cartLineDTO `json:"lines"`
	Total   int64         `json:"total"`
	Display string        `json:"total_display"`
}

type addItemRequest struct {
	MenuItemID   string  `json:"menu_item_id"`
	ModifierIDs  []int64 `json:"modifier_ids"`
	Instructions string  `json:"instructions"`
	Quantity     int     `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func toCartResponse(tableID int64, c *cart.Cart) cartResponse {
	lines := c.Lines()
	resp := cartResponse{
		TableID: tableID,
		Lines:   make([]cartLineDTO, 0, len(lines)),
		Total:   c.Total(),
		Display: cart.FormatMoney(c.Total()),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, cartLineDTO{
			ID:           l.ID,
			MenuItemID:   l.Item.ID,
			Name:         l.Item.Name,
			UnitPrice:    l.UnitTotal(),
			Quantity:     l.Quantity,
			Instructions: l.Instructions,
			Modifiers:    l.Modifiers,
			Subtotal:     l.Subtotal(),
		})
	}
	return resp
}

// cartSession returns the caller's session bound to a table: ?table= wins
// over the table picked with /api/session/table.
func (s *Server) cartSession(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	sess := sessionFrom(r.Context())
	if v := r.URL.Query().Get("table"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid_table", "table must be a positive integer")
			return sess, false
		}
		sess.TableID = id
	}
	if sess.TableID == 0 {
		s.respondError(w, http.StatusBadRequest, "no_table", "select a table first")
		return sess, false
	}
	return sess, true
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	c, err := s.desk.Cart(ctx, sess)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toCartResponse(sess.TableID, c))
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.MenuItemID) == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "menu_item_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		s.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	item, err := s.store.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	mods := make([]models.MenuModifier, 0, len(req.ModifierIDs))
	for _, id := range req.ModifierIDs {
		m, err := s.store.GetModifier(ctx, id)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		mods = append(mods, *m)
	}

	c, _, err := s.desk.AddItems(ctx, sess, *item, req.Instructions, mods, req.Quantity)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toCartResponse(sess.TableID, c))
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	// quantity <= 0 removes the line
	c, err := s.desk.UpdateQuantity(ctx, sess, chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toCartResponse(sess.TableID, c))
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	c, err := s.desk.RemoveLine(ctx, sess, chi.URLParam(r, "lineID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toCartResponse(sess.TableID, c))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if err := s.desk.Clear(ctx, sess); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cartSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	o, err := s.desk.Submit(ctx, sess)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, o)
}
