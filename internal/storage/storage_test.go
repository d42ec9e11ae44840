package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/storage"
)

func newStore(t *testing.T) (*storage.OrderStore, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "orders.json")
	st, err := storage.New(file)
	require.NoError(t, err)
	return st, file
}

func TestSeedsDemoOrders(t *testing.T) {
	st, file := newStore(t)

	orders, err := st.List()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1001, orders[0].ID)
	assert.Equal(t, 1002, orders[1].ID)

	// демо-набор сразу записывается на диск
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGetByID(t *testing.T) {
	st, _ := newStore(t)

	o, err := st.GetByID(1001)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, o.Status)

	_, err = st.GetByID(9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	st, _ := newStore(t)

	orders, err := st.List()
	require.NoError(t, err)
	orders[0].Items[0].Quantity = 99

	again, err := st.List()
	require.NoError(t, err)
	assert.Equal(t, 2, again[0].Items[0].Quantity)
}

func TestUpdatePersists(t *testing.T) {
	st, file := newStore(t)

	o, err := st.GetByID(1001)
	require.NoError(t, err)
	o.Status = models.StatusShipping
	require.NoError(t, st.Update(o))

	// изменение переживает перезагрузку из файла
	reopened, err := storage.New(file)
	require.NoError(t, err)
	got, err := reopened.GetByID(1001)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipping, got.Status)
}

func TestUpdateUnknown(t *testing.T) {
	st, _ := newStore(t)
	err := st.Update(&models.Order{ID: 9999})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate(t *testing.T) {
	st, _ := newStore(t)

	require.NoError(t, st.Create(&models.Order{ID: 1003}))
	orders, err := st.List()
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	assert.Error(t, st.Create(&models.Order{ID: 1003}), "повторный id должен отклоняться")
}

func TestDelete(t *testing.T) {
	st, file := newStore(t)

	require.NoError(t, st.Delete(1001))
	_, err := st.GetByID(1001)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, st.Delete(1001), repository.ErrNotFound)

	reopened, err := storage.New(file)
	require.NoError(t, err)
	orders, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1002, orders[0].ID)
}

func TestDoesNotReseedNonEmptyFile(t *testing.T) {
	st, file := newStore(t)
	require.NoError(t, st.Delete(1002))

	reopened, err := storage.New(file)
	require.NoError(t, err)
	orders, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, orders, 1, "непустой файл не должен засеиваться заново")
}

func TestCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(file, []byte("{не json"), 0644))

	_, err := storage.New(file)
	assert.Error(t, err)
}
