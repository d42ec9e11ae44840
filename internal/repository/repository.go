package repository

import (
	"errors"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

// ErrNotFound is returned by every Repository implementation for a missing
// order id.
var ErrNotFound = errors.New("заказ не найден")

// Repository is the order store boundary. The in-memory file-backed store
// and the Postgres repository both satisfy it, so the service and HTTP
// layers never know which one they run on.
type Repository interface {
	List() ([]*models.Order, error)
	GetByID(id int) (*models.Order, error)
	Create(o *models.Order) error
	Update(o *models.Order) error
	Delete(id int) error
}
