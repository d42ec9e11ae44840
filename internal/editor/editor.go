// Package editor implements the begin/cancel/commit transaction over the
// line items of an open order. Unlike the view-state flag it replaces, the
// gate here is real: every structural edit checks that a transaction is
// open and fails otherwise.
package editor

import (
	"errors"
	"time"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

var (
	ErrNotEditing = errors.New("редактирование состава не открыто")
	ErrEditing    = errors.New("редактирование состава уже открыто")
)

// Session edits the items of one order. Begin snapshots the current items;
// Cancel restores the snapshot, Commit keeps the edits. A session is not
// safe for concurrent use, matching the single-operator admin panel.
type Session struct {
	order   *models.Order
	cat     catalog.Catalog
	editing bool

	snapshot []models.OrderItem

	// item ids come from the creation timestamp; lastID guards against two
	// additions landing in the same millisecond
	lastID int64
	now    func() time.Time
}

func NewSession(order *models.Order, cat catalog.Catalog) *Session {
	return &Session{order: order, cat: cat, now: time.Now}
}

func (s *Session) Editing() bool {
	return s.editing
}

// Begin opens the transaction and snapshots the items for rollback.
func (s *Session) Begin() error {
	if s.editing {
		return ErrEditing
	}
	s.snapshot = append([]models.OrderItem(nil), s.order.Items...)
	s.editing = true
	return nil
}

// Cancel restores the exact pre-transaction items and closes the session.
func (s *Session) Cancel() error {
	if !s.editing {
		return ErrNotEditing
	}
	s.order.Items = s.snapshot
	s.snapshot = nil
	s.editing = false
	return nil
}

// Commit keeps the current items, discards the snapshot and closes the
// session.
func (s *Session) Commit() error {
	if !s.editing {
		return ErrNotEditing
	}
	s.snapshot = nil
	s.editing = false
	return nil
}

// AddItem appends a blank line: fresh identity, quantity 1, price 0. The
// created item is returned by value so the caller can pick up its id.
func (s *Session) AddItem() (models.OrderItem, error) {
	if !s.editing {
		return models.OrderItem{}, ErrNotEditing
	}
	it := models.OrderItem{ID: s.nextID(), Quantity: 1}
	s.order.Items = append(s.order.Items, it)
	return it, nil
}

// CloneItem duplicates the line under a new identity, appended to the end.
// A missing id is a no-op.
func (s *Session) CloneItem(id int64) error {
	if !s.editing {
		return ErrNotEditing
	}
	for _, it := range s.order.Items {
		if it.ID == id {
			dup := it
			dup.ID = s.nextID()
			s.order.Items = append(s.order.Items, dup)
			return nil
		}
	}
	return nil
}

// RemoveItem deletes the line by identity; a missing id is a no-op.
func (s *Session) RemoveItem(id int64) error {
	if !s.editing {
		return ErrNotEditing
	}
	items := s.order.Items[:0]
	for _, it := range s.order.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	s.order.Items = items
	return nil
}

// IncQuantity raises the quantity by exactly one, without an upper bound.
func (s *Session) IncQuantity(id int64) error {
	return s.updateItem(id, func(it *models.OrderItem) {
		it.Quantity++
	})
}

// DecQuantity lowers the quantity by one, never below 1.
func (s *Session) DecQuantity(id int64) error {
	return s.updateItem(id, func(it *models.OrderItem) {
		if it.Quantity > 1 {
			it.Quantity--
		}
	})
}

func (s *Session) SetSize(id int64, size string) error {
	return s.updateItem(id, func(it *models.OrderItem) {
		it.Size = size
	})
}

// SetProductByName fills the line from the catalog product with that name:
// name, sku and price are overwritten, the size resets to the product's
// first option. An unknown name leaves the line unchanged.
func (s *Session) SetProductByName(id int64, name string) error {
	if !s.editing {
		return ErrNotEditing
	}
	p, ok := s.cat.FindByName(name)
	if !ok {
		return nil
	}
	return s.applyProduct(id, p)
}

// SetProductBySKU is SetProductByName keyed by article instead of name.
func (s *Session) SetProductBySKU(id int64, sku string) error {
	if !s.editing {
		return ErrNotEditing
	}
	p, ok := s.cat.FindBySKU(sku)
	if !ok {
		return nil
	}
	return s.applyProduct(id, p)
}

func (s *Session) applyProduct(id int64, p catalog.Product) error {
	return s.updateItem(id, func(it *models.OrderItem) {
		it.Name = p.Name
		it.SKU = p.SKU
		it.Price = p.Price
		it.Size = p.FirstSize()
	})
}

func (s *Session) updateItem(id int64, fn func(*models.OrderItem)) error {
	if !s.editing {
		return ErrNotEditing
	}
	for i := range s.order.Items {
		if s.order.Items[i].ID == id {
			fn(&s.order.Items[i])
			return nil
		}
	}
	return nil
}

func (s *Session) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
