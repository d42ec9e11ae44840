package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/config"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/middleware"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/pipeline"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/summary"
)

type Server struct {
	svc       *service.OrderService
	cat       catalog.Catalog
	auditPool *audit.WorkerPool
	log       *zap.Logger
	user      string
	password  string
	addr      string
}

func NewServer(svc *service.OrderService, cat catalog.Catalog, auditPool *audit.WorkerPool, cfg *config.Config, log *zap.Logger) *Server {
	return &Server{
		svc:       svc,
		cat:       cat,
		auditPool: auditPool,
		log:       log,
		user:      cfg.Username,
		password:  cfg.Password,
		addr:      cfg.Addr(),
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.handleWith(mux, "/orders", s.handleOrders,
		[]string{"GET"}, nil,
	)

	s.handleWith(mux, "/orders/", s.handleOrderOne,
		[]string{"PUT", "DELETE", "POST"},
		[]string{"PUT", "DELETE", "POST"},
	)

	mux.HandleFunc("/catalog", s.handleCatalog)
	mux.HandleFunc("/statuses", s.handleStatuses)
}

func (s *Server) Run() error {
	mux := http.NewServeMux()

	s.RegisterRoutes(mux)

	s.log.Info("server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) handleWith(mux *http.ServeMux, path string,
	handlerFunc http.HandlerFunc,
	logMethods []string, authMethods []string,
) {
	finalHandler := middleware.LogMiddleware(s.log, s.auditPool, logMethods...)(
		middleware.BasicAuthMiddleware(s.user, s.password, authMethods...)(
			handlerFunc,
		),
	)
	mux.Handle(path, finalHandler)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handleListOrders(w, r)
}

// handleOrderOne routes /orders/{id}, /orders/{id}/comments and
// /orders/{id}/summary.
func (s *Server) handleOrderOne(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/orders/")
	idStr, action, _ := strings.Cut(rest, "/")
	if idStr == "" {
		http.Error(w, "missing ID", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "bad ID", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.handleGetOrder(w, r, id)
		case http.MethodPut:
			s.handleSaveOrder(w, r, id)
		case http.MethodDelete:
			s.handleDeleteOrder(w, r, id)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "comments":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleAddComment(w, r, id)
	case "summary":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleSummary(w, r, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// listResponse is one page of the filtered collection plus the numbers the
// pager renders ("Показаны 1–5 из 12").
type listResponse struct {
	Orders    []*models.Order `json:"orders"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	Start     int             `json:"start"`
	End       int             `json:"end"`
	Total     int             `json:"total"`
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria, err := parseCriteria(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dir := pipeline.Desc
	if q.Get("sort") == string(pipeline.Asc) {
		dir = pipeline.Asc
	}
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		page = p
	}
	perPage := pipeline.DefaultPageSize
	if pp, err := strconv.Atoi(q.Get("per_page")); err == nil && pp > 0 {
		perPage = pp
	}

	res, err := s.svc.ListOrders(criteria, dir, page, perPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Orders:    res.Orders,
		Page:      res.Number,
		PageCount: res.Count,
		Start:     res.Start,
		End:       res.End,
		Total:     res.Total,
	})
}

// parseCriteria maps list query parameters onto a filter record. Malformed
// filter dates are rejected here instead of silently matching nothing.
func parseCriteria(q url.Values) (pipeline.Criteria, error) {
	c := pipeline.Criteria{
		Search:       q.Get("search"),
		DeliveryType: q.Get("delivery_type"),
		PayMethod:    q.Get("pay_method"),
		PayStatus:    models.PaymentStatus(q.Get("pay_status")),
		OrderStatus:  models.OrderStatus(q.Get("order_status")),
	}
	if c.OrderStatus != "" && !c.OrderStatus.Valid() {
		return c, errors.New("unknown order_status")
	}
	if c.PayStatus != "" && !c.PayStatus.Valid() {
		return c, errors.New("unknown pay_status")
	}
	if v := q.Get("cost_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.New("bad cost_min")
		}
		c.CostMin = &n
	}
	if v := q.Get("cost_max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.New("bad cost_max")
		}
		c.CostMax = &n
	}
	switch v := q.Get("need_confirm"); v {
	case "", string(pipeline.Yes), string(pipeline.No):
		c.NeedConfirm = pipeline.TriState(v)
	default:
		return c, errors.New("bad need_confirm")
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c, errors.New("bad date_from")
		}
		c.DateFrom = t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c, errors.New("bad date_to")
		}
		c.DateTo = t
	}
	return c, nil
}

func (s *Server) handleGetOrder(w http.ResponseWriter, _ *http.Request, id int) {
	o, err := s.svc.GetOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleSaveOrder(w http.ResponseWriter, r *http.Request, id int) {
	var updated models.Order
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "bad JSON", http.StatusBadRequest)
		return
	}
	if updated.ID != id {
		http.Error(w, "ID mismatch", http.StatusBadRequest)
		return
	}
	if err := s.svc.SaveOrder(r.Context(), &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteRequest carries the reason chosen in the delete dialog; Details
// holds the free text for the "other" reason.
type deleteRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request, id int) {
	var req deleteRequest
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad JSON", http.StatusBadRequest)
			return
		}
	}
	reason := req.Reason
	if req.Details != "" {
		reason = reason + " (" + req.Details + ")"
	}
	if err := s.svc.DeleteOrder(r.Context(), id, reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, id int) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad JSON", http.StatusBadRequest)
		return
	}
	comment, err := s.svc.AddComment(r.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyComment) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request, id int) {
	o, err := s.svc.GetOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, summary.Render(o))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.cat.Products())
}

func (s *Server) handleStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, models.Statuses)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
