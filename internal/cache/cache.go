// Package cache keeps the full order list in memory so the filter pipeline
// never hits the repository per keystroke.
package cache

import (
	"context"
	"sync"
	"time"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
)

type OrdersCache struct {
	mu     sync.RWMutex
	orders []*models.Order
	warm   bool
}

func NewOrdersCache() *OrdersCache {
	return &OrdersCache{orders: make([]*models.Order, 0)}
}

// Refresh replaces the cached list with the repository's current state.
func (c *OrdersCache) Refresh(repo repository.Repository) error {
	orders, err := repo.List()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.orders = orders
	c.warm = true
	c.mu.Unlock()
	return nil
}

// Get returns the cached list and whether the cache has been filled at
// least once. Callers must not modify the returned orders.
func (c *OrdersCache) Get() ([]*models.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orders, c.warm
}

// Put inserts or replaces one order, keeping the cache current after a save
// without a full refresh.
func (c *OrdersCache) Put(o *models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.orders {
		if cur.ID == o.ID {
			c.orders[i] = o
			return
		}
	}
	c.orders = append(c.orders, o)
}

// Remove drops the order with the given id, if cached.
func (c *OrdersCache) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.orders {
		if cur.ID == id {
			c.orders = append(c.orders[:i], c.orders[i+1:]...)
			return
		}
	}
}

// StartAutoRefresh refreshes the cache on the given interval until the
// context is cancelled. Refresh errors are swallowed, the next tick retries.
func (c *OrdersCache) StartAutoRefresh(ctx context.Context, repo repository.Repository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = c.Refresh(repo)
		case <-ctx.Done():
			return
		}
	}
}
