package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

type listRepo struct {
	orders []*models.Order
}

func (r *listRepo) List() ([]*models.Order, error)     { return r.orders, nil }
func (r *listRepo) GetByID(int) (*models.Order, error) { return nil, nil }
func (r *listRepo) Create(*models.Order) error         { return nil }
func (r *listRepo) Update(*models.Order) error         { return nil }
func (r *listRepo) Delete(int) error                   { return nil }

func TestColdCache(t *testing.T) {
	c := cache.NewOrdersCache()
	orders, warm := c.Get()
	assert.False(t, warm)
	assert.Empty(t, orders)
}

func TestRefresh(t *testing.T) {
	c := cache.NewOrdersCache()
	require.NoError(t, c.Refresh(&listRepo{orders: models.DemoOrders()}))

	orders, warm := c.Get()
	assert.True(t, warm)
	assert.Len(t, orders, 2)
}

func TestPutReplacesAndAppends(t *testing.T) {
	c := cache.NewOrdersCache()
	require.NoError(t, c.Refresh(&listRepo{orders: models.DemoOrders()}))

	updated := &models.Order{ID: 1001, Status: models.StatusShipping}
	c.Put(updated)
	orders, _ := c.Get()
	require.Len(t, orders, 2)
	assert.Equal(t, models.StatusShipping, orders[0].Status)

	c.Put(&models.Order{ID: 1003})
	orders, _ = c.Get()
	assert.Len(t, orders, 3)
}

func TestRemove(t *testing.T) {
	c := cache.NewOrdersCache()
	require.NoError(t, c.Refresh(&listRepo{orders: models.DemoOrders()}))

	c.Remove(1001)
	orders, _ := c.Get()
	require.Len(t, orders, 1)
	assert.Equal(t, 1002, orders[0].ID)

	// удаление отсутствующего не паникует
	c.Remove(777)
}
