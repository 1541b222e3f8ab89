package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restaurant-backoffice/export"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"
)

const dateLayout = "2006-01-02"

type payrollResponse struct {
	Entries []models.PayrollEntry `json:"entries"`
	Total   int64                 `json:"total"`
}

func (s *Server) dailyStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	stats, err := s.store.GetDailyStats(ctx, date)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) revenueByDay(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r, 7)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	days, err := s.store.RevenueByDay(ctx, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(days))
}

func (s *Server) listPayroll(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.filteredPayroll(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, payrollResponse{Entries: nonNil(entries), Total: services.PayrollTotal(entries)})
}

func (s *Server) payrollCSV(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.filteredPayroll(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePayrollCSV(&buf, entries); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondCSV(w, "payroll.csv", buf.Bytes())
}

func (s *Server) ordersCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r, 1)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	// ListOrdersBetween takes a half-open range
	orders, err := s.store.ListOrdersBetween(ctx, from.Format(dateLayout), to.AddDate(0, 0, 1).Format(dateLayout))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteOrdersCSV(&buf, orders); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondCSV(w, "orders.csv", buf.Bytes())
}

func (s *Server) stockCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	items, err := s.store.ListStock(ctx, false)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteStockCSV(&buf, items); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondCSV(w, "stock.csv", buf.Bytes())
}

// filteredPayroll applies ?from=&to=&status=&staff_id= to all payroll entries.
func (s *Server) filteredPayroll(w http.ResponseWriter, r *http.Request) ([]models.PayrollEntry, bool) {
	q := r.URL.Query()
	var f services.PayrollFilter
	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = time.Parse(dateLayout, v); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return nil, false
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = time.Parse(dateLayout, v); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return nil, false
		}
	}
	if v := q.Get("status"); v != "" {
		if !services.ValidPayrollStatus(v) {
			s.respondError(w, http.StatusBadRequest, "invalid_status", "status must be pending, approved or paid")
			return nil, false
		}
		f.Status = v
	}
	if v := q.Get("staff_id"); v != "" {
		if f.StaffID, err = strconv.ParseInt(v, 10, 64); err != nil || f.StaffID <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a positive integer")
			return nil, false
		}
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	entries, err := s.store.ListPayroll(ctx)
	if err != nil {
		s.respondServiceError(w, r, err)
		return nil, false
	}
	return services.FilterPayroll(entries, f), true
}

func (s *Server) respondCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// dateRange reads ?from=&to= (inclusive). Missing to is today; missing from
// is defaultDays-1 days before to.
func dateRange(r *http.Request, defaultDays int) (time.Time, time.Time, error) {
	q := r.URL.Query()
	to := time.Now()
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		to = t
	}
	from := to.AddDate(0, 0, -(defaultDays - 1))
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to is before from")
	}
	return from, to, nil
}
