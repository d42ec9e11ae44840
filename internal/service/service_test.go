package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/pipeline"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
)

// fakeRepo keeps orders in a map and counts List calls to watch the cache.
type fakeRepo struct {
	orders    map[int]*models.Order
	listCalls int
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{orders: make(map[int]*models.Order)}
	for _, o := range models.DemoOrders() {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepo) List() ([]*models.Order, error) {
	r.listCalls++
	res := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		res = append(res, o.Clone())
	}
	return res, nil
}

func (r *fakeRepo) GetByID(id int) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *fakeRepo) Create(o *models.Order) error {
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeRepo) Update(o *models.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeRepo) Delete(id int) error {
	if _, ok := r.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func newService(t *testing.T) (*service.OrderService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return service.NewOrderService(repo, cache.NewOrdersCache(), zap.NewNop()), repo
}

func TestListOrdersPipeline(t *testing.T) {
	svc, _ := newService(t)

	page, err := svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)

	require.Len(t, page.Orders, 2)
	assert.Equal(t, 1002, page.Orders[0].ID, "по умолчанию новые сверху")
	assert.Equal(t, 1001, page.Orders[1].ID)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Count)
}

func TestListOrdersFilters(t *testing.T) {
	svc, _ := newService(t)

	page, err := svc.ListOrders(pipeline.Criteria{PayStatus: models.PaymentPaid}, pipeline.Desc, 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, 1001, page.Orders[0].ID)
}

func TestListOrdersWarmsCacheOnce(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)
	_, err = svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls, "повторный листинг должен идти из кэша")
}

func TestGetOrderNormalizes(t *testing.T) {
	svc, repo := newService(t)
	repo.orders[7] = &models.Order{ID: 7}

	o, err := svc.GetOrder(7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, o.Status)
	assert.Equal(t, models.PaymentUnpaid, o.PaymentStatus)
	assert.NotNil(t, o.Items)

	_, err = svc.GetOrder(9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSaveOrder(t *testing.T) {
	svc, repo := newService(t)

	o, err := svc.GetOrder(1001)
	require.NoError(t, err)
	o.Status = models.StatusShipping
	require.NoError(t, svc.SaveOrder(context.Background(), o))

	assert.Equal(t, models.StatusShipping, repo.orders[1001].Status)
}

func TestSaveOrderUpdatesCache(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)

	o, err := svc.GetOrder(1001)
	require.NoError(t, err)
	o.Status = models.StatusShipping
	require.NoError(t, svc.SaveOrder(context.Background(), o))

	page, err := svc.ListOrders(pipeline.Criteria{OrderStatus: models.StatusShipping}, pipeline.Desc, 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, 1001, page.Orders[0].ID)
}

func TestSaveOrderValidation(t *testing.T) {
	svc, _ := newService(t)

	o, err := svc.GetOrder(1001)
	require.NoError(t, err)
	o.Status = "NOT_A_STATUS"
	o.PaymentStatus = "как-то"

	err = svc.SaveOrder(context.Background(), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный статус заказа")
	assert.Contains(t, err.Error(), "неизвестный статус оплаты")
}

func TestSaveOrderUnknown(t *testing.T) {
	svc, _ := newService(t)
	err := svc.SaveOrder(context.Background(), &models.Order{
		ID: 9999, Status: models.StatusNew, PaymentStatus: models.PaymentUnpaid,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), 1001, "дубль заказа"))
	_, ok := repo.orders[1001]
	assert.False(t, ok)

	page, err := svc.ListOrders(pipeline.Criteria{}, pipeline.Desc, 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, 1002, page.Orders[0].ID)

	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), 1001, ""), repository.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	svc, repo := newService(t)

	c, err := svc.AddComment(context.Background(), 1001, "  Перезвонить клиенту  ")
	require.NoError(t, err)

	assert.Equal(t, service.CommentAuthor, c.Author)
	assert.Equal(t, "Перезвонить клиенту", c.Text)
	assert.NotZero(t, c.ID)
	assert.NotEmpty(t, c.Date)

	saved := repo.orders[1001]
	require.Len(t, saved.Comments, 1)
	assert.Equal(t, c, saved.Comments[0])
}

func TestAddCommentEmpty(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.AddComment(context.Background(), 1001, "   ")
	assert.ErrorIs(t, err, service.ErrEmptyComment)
	assert.Empty(t, repo.orders[1001].Comments)

	_, err = svc.AddComment(context.Background(), 9999, "текст")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
