package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/dates"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/pipeline"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
)

var ErrEmptyComment = errors.New("текст комментария не может быть пустым")

// CommentAuthor is the author every panel comment is attributed to.
const CommentAuthor = "Менеджер"

// OrderService ties the repository, the list cache and the audit trail
// together. Audit pool and outbox are optional; without them saves and
// deletes still work, they are just not recorded.
type OrderService struct {
	repo  repository.Repository
	cache *cache.OrdersCache
	audit *audit.WorkerPool
	tasks repository.TaskRepository
	log   *zap.Logger

	now func() time.Time
}

func NewOrderService(repo repository.Repository, c *cache.OrdersCache, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:  repo,
		cache: c,
		log:   log,
		now:   time.Now,
	}
}

// WithAudit attaches the audit pool and the outbox task repository.
func (s *OrderService) WithAudit(pool *audit.WorkerPool, tasks repository.TaskRepository) *OrderService {
	s.audit = pool
	s.tasks = tasks
	return s
}

// ListOrders runs the filter/sort/paginate pipeline over the cached order
// list, filling the cache from the repository on first use.
func (s *OrderService) ListOrders(c pipeline.Criteria, dir pipeline.Direction, page, perPage int) (pipeline.Page, error) {
	orders, warm := s.cache.Get()
	if !warm {
		if err := s.cache.Refresh(s.repo); err != nil {
			return pipeline.Page{}, fmt.Errorf("refresh orders: %w", err)
		}
		orders, _ = s.cache.Get()
	}
	filtered := pipeline.Filter(orders, c)
	sorted := pipeline.SortByDate(filtered, dir)
	return pipeline.Paginate(sorted, page, perPage), nil
}

// GetOrder loads an order normalized for editing.
func (s *OrderService) GetOrder(id int) (*models.Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return models.Normalize(o), nil
}

// SaveOrder overwrites the stored record with the edited one and records
// the change, including the status move, in the audit trail.
func (s *OrderService) SaveOrder(ctx context.Context, o *models.Order) error {
	var invalid error
	if !o.Status.Valid() {
		invalid = errors.Join(invalid, fmt.Errorf("неизвестный статус заказа: %q", o.Status))
	}
	if !o.PaymentStatus.Valid() {
		invalid = errors.Join(invalid, fmt.Errorf("неизвестный статус оплаты: %q", o.PaymentStatus))
	}
	if invalid != nil {
		return invalid
	}

	old, err := s.repo.GetByID(o.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(o); err != nil {
		return err
	}
	s.cache.Put(o.Clone())

	s.record(ctx, audit.Record{
		Timestamp: s.now().UTC(),
		OrderID:   o.ID,
		OldStatus: old.Status,
		NewStatus: o.Status,
		Message:   "order saved",
	})
	return nil
}

// DeleteOrder removes the order; the reason chosen in the confirmation
// dialog goes into the audit trail.
func (s *OrderService) DeleteOrder(ctx context.Context, id int, reason string) error {
	old, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.Remove(id)

	msg := "order deleted"
	if reason != "" {
		msg = msg + ": " + reason
	}
	s.record(ctx, audit.Record{
		Timestamp: s.now().UTC(),
		OrderID:   id,
		OldStatus: old.Status,
		Message:   msg,
	})
	return nil
}

// AddComment appends a manager comment to the order. Blank text is
// rejected; comments are never edited or removed afterwards.
func (s *OrderService) AddComment(ctx context.Context, id int, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, ErrEmptyComment
	}
	o, err := s.repo.GetByID(id)
	if err != nil {
		return models.Comment{}, err
	}
	o = models.Normalize(o)
	comment := models.Comment{
		ID:     s.now().UnixMilli(),
		Author: CommentAuthor,
		Date:   dates.FormatDay(s.now()),
		Text:   text,
	}
	o.Comments = append(o.Comments, comment)
	if err := s.repo.Update(o); err != nil {
		return models.Comment{}, err
	}
	s.cache.Put(o)

	s.record(ctx, audit.Record{
		Timestamp: s.now().UTC(),
		OrderID:   id,
		Message:   "comment added",
	})
	return comment, nil
}

func (s *OrderService) record(ctx context.Context, rec audit.Record) {
	if s.audit != nil {
		s.audit.Log(rec)
	}
	if s.tasks != nil {
		data, err := rec.Encode()
		if err != nil {
			s.log.Error("encoding audit record", zap.Error(err))
			return
		}
		if err := s.tasks.CreateTask(ctx, data); err != nil {
			s.log.Error("enqueueing audit task", zap.Error(err))
		}
	}
}
