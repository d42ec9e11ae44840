// Package storage is the file-backed order store used for demo and local
// runs: the whole collection lives in memory and every mutation rewrites
// the JSON data file.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
)

type OrderStore struct {
	mu       sync.Mutex
	orders   map[int]*models.Order
	dataFile string
}

// New loads the store from dataFile. A missing or empty file seeds the two
// demo orders and writes them out, so a fresh checkout starts with data to
// click through.
func New(dataFile string) (*OrderStore, error) {
	st := &OrderStore{
		orders:   make(map[int]*models.Order),
		dataFile: dataFile,
	}
	if err := st.loadFromFile(); err != nil {
		return nil, err
	}
	if len(st.orders) == 0 {
		for _, o := range models.DemoOrders() {
			st.orders[o.ID] = o
		}
		if err := st.saveToFile(); err != nil {
			return nil, fmt.Errorf("сбой при сохранении файла: %w", err)
		}
	}
	return st, nil
}

func (st *OrderStore) loadFromFile() error {
	data, err := os.ReadFile(st.dataFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var orderList []*models.Order
	if err := json.Unmarshal(data, &orderList); err != nil {
		return fmt.Errorf("ошибка декодирования файла: %w", err)
	}
	st.orders = make(map[int]*models.Order, len(orderList))
	for _, o := range orderList {
		st.orders[o.ID] = o
	}
	return nil
}

func (st *OrderStore) saveToFile() error {
	orderList := st.sortedLocked()
	data, err := json.MarshalIndent(orderList, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.dataFile, data, 0644)
}

func (st *OrderStore) sortedLocked() []*models.Order {
	orderList := make([]*models.Order, 0, len(st.orders))
	for _, o := range st.orders {
		orderList = append(orderList, o)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].ID < orderList[j].ID
	})
	return orderList
}

// List returns copies of every order by ascending id.
func (st *OrderStore) List() ([]*models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	orderList := st.sortedLocked()
	res := make([]*models.Order, len(orderList))
	for i, o := range orderList {
		res[i] = o.Clone()
	}
	return res, nil
}

func (st *OrderStore) GetByID(id int) (*models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	o, ok := st.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o.Clone(), nil
}

func (st *OrderStore) Create(o *models.Order) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.orders[o.ID]; exists {
		return fmt.Errorf("заказ %d уже существует", o.ID)
	}
	st.orders[o.ID] = o.Clone()
	if err := st.saveToFile(); err != nil {
		return fmt.Errorf("сбой при сохранении файла: %w", err)
	}
	return nil
}

func (st *OrderStore) Update(o *models.Order) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.orders[o.ID]; !exists {
		return repository.ErrNotFound
	}
	st.orders[o.ID] = o.Clone()
	if err := st.saveToFile(); err != nil {
		return fmt.Errorf("сбой при сохранении файла: %w", err)
	}
	return nil
}

func (st *OrderStore) Delete(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.orders[id]; !exists {
		return repository.ErrNotFound
	}
	delete(st.orders, id)
	if err := st.saveToFile(); err != nil {
		return fmt.Errorf("сбой при сохранении файла: %w", err)
	}
	return nil
}
