package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_date, client, delivery, discount, payment,
		payment_status, status, need_confirmation, need_manager_help,
		recipient, comments, items`

func (r *OrderRepository) Create(o *models.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

	o, err := scanOrder(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) Update(o *models.Order) error {
	query := `UPDATE orders SET
			order_date=$2, client=$3, delivery=$4, discount=$5, payment=$6,
			payment_status=$7, status=$8, need_confirmation=$9,
			need_manager_help=$10, recipient=$11, comments=$12, items=$13
		WHERE id=$1`

	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every order by ascending id. Filtering and paging happen in
// the pipeline over the cached list, not in SQL.
func (r *OrderRepository) List() ([]*models.Order, error) {
	rows, err := r.db.Query(`SELECT ` + orderColumns + ` FROM orders ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var res []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return res, nil
}

func orderArgs(o *models.Order) ([]interface{}, error) {
	client, err := json.Marshal(o.Client)
	if err != nil {
		return nil, fmt.Errorf("marshal client: %w", err)
	}
	delivery, err := json.Marshal(o.Delivery)
	if err != nil {
		return nil, fmt.Errorf("marshal delivery: %w", err)
	}
	recipient, err := json.Marshal(o.Recipient)
	if err != nil {
		return nil, fmt.Errorf("marshal recipient: %w", err)
	}
	comments, err := json.Marshal(o.Comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	return []interface{}{
		o.ID, o.Date, client, delivery, o.Discount, o.Payment,
		o.PaymentStatus, o.Status, o.NeedConfirmation, o.NeedManagerHelp,
		recipient, comments, items,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var client, delivery, recipient, comments, items []byte
	err := row.Scan(
		&o.ID, &o.Date, &client, &delivery, &o.Discount, &o.Payment,
		&o.PaymentStatus, &o.Status, &o.NeedConfirmation, &o.NeedManagerHelp,
		&recipient, &comments, &items,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(client, &o.Client); err != nil {
		return nil, fmt.Errorf("unmarshal client: %w", err)
	}
	if err := json.Unmarshal(delivery, &o.Delivery); err != nil {
		return nil, fmt.Errorf("unmarshal delivery: %w", err)
	}
	if err := json.Unmarshal(recipient, &o.Recipient); err != nil {
		return nil, fmt.Errorf("unmarshal recipient: %w", err)
	}
	if err := json.Unmarshal(comments, &o.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return o, nil
}
