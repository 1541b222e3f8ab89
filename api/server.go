// Package api is the back-office HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"restaurant-backoffice/cache"
	"restaurant-backoffice/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Server struct {
	desk     *services.Desk
	store    Backoffice
	sessions cache.SessionStore
	log      *zap.Logger
	timeout  time.Duration
	router   chi.Router
}

func NewServer(desk *services.Desk, store Backoffice, sessions cache.SessionStore, log *zap.Logger, timeout time.Duration) *Server {
	s := &Server{
		desk:     desk,
		store:    store,
		sessions: sessions,
		log:      log,
		timeout:  timeout,
	}
	s.router = s.routes()
	return s
}

// Handler returns the router wrapped with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "backoffice-api")
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/logout", s.logout)
			r.Post("/session/table", s.selectTable)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.getCart)
				r.Delete("/", s.clearCart)
				r.Post("/items", s.addCartItem)
				r.Patch("/items/{lineID}", s.updateCartItem)
				r.Delete("/items/{lineID}", s.removeCartItem)
				r.Post("/submit", s.submitCart)
			})

			r.Get("/menu", s.listMenu)
			r.Get("/menu/{id}/modifiers", s.listModifiers)
			r.With(s.requireManager).Post("/menu", s.addMenuItem)

			r.Get("/orders", s.listOrders)
			r.Get("/orders/{id}", s.getOrder)
			r.Post("/orders/{id}/status", s.setOrderStatus)

			r.Get("/tables", s.listTables)
			r.Post("/tables/{id}/status", s.setTableStatus)

			r.Get("/stock", s.listStock)
			r.Post("/stock/{id}/adjust", s.adjustStock)

			r.Group(func(r chi.Router) {
				r.Use(s.requireManager)
				r.Get("/staff", s.listStaff)
				r.Post("/staff", s.addStaff)
				r.Post("/staff/{id}/deactivate", s.deactivateStaff)
				r.Post("/staff/{id}/reset-pin", s.resetPIN)
				r.Delete("/menu/{id}", s.deleteMenuItem)
				r.Post("/stock", s.addStockItem)
				r.Get("/stock/{id}/movements", s.stockMovements)
				r.Post("/payroll", s.addPayrollEntry)
				r.Post("/payroll/{id}/status", s.setPayrollStatus)
				r.Get("/finance/daily", s.dailyStats)
				r.Get("/finance/revenue", s.revenueByDay)
				r.Get("/payroll", s.listPayroll)
				r.Get("/payroll.csv", s.payrollCSV)
				r.Get("/orders.csv", s.ordersCSV)
				r.Get("/stock.csv", s.stockCSV)
			})
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// withTimeout bounds store calls made by a handler.
func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}
