// Package handler is the interactive console for the order store: the same
// list/detail/edit flow the web panel exposes, driven by typed commands.
package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/editor"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/pipeline"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/summary"
)

type Handler struct {
	svc    *service.OrderService
	cat    catalog.Catalog
	sum    *summary.Service
	search *pipeline.Debouncer

	// mu guards the fields below: the debounced search callback fires on a
	// timer goroutine while the command loop keeps executing
	mu      sync.Mutex
	filters pipeline.Criteria
	dir     pipeline.Direction

	// detail state: the currently open order and its items session
	current *models.Order
	session *editor.Session
}

func New(svc *service.OrderService, cat catalog.Catalog, sum *summary.Service) *Handler {
	return &Handler{
		svc:    svc,
		cat:    cat,
		sum:    sum,
		dir:    pipeline.Desc,
		search: pipeline.NewDebouncer(pipeline.SearchDebounce),
	}
}

func (h *Handler) Execute(cmd string, args []string) error {
	commands := map[string]func([]string){
		"help":    h.printHelp,
		"exit":    h.handleExit,
		"list":    h.handleList,
		"search":  h.handleSearch,
		"sort":    h.handleSort,
		"reset":   h.handleReset,
		"open":    h.handleOpen,
		"items":   h.handleItems,
		"save":    h.handleSave,
		"comment": h.handleComment,
		"copy":    h.handleCopy,
		"delete":  h.handleDelete,
	}

	fn, ok := commands[cmd]
	if !ok {
		return errors.New("неизвестная команда. Введите 'help' для справки")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(args)
	return nil
}

func (h *Handler) printHelp(args []string) {
	fmt.Println(`Доступные команды:
  help
    - выводит справку
  exit
    - завершает программу
  list [page=1]
    - страница списка заказов с текущими фильтрами
  search <текст>
    - поиск по ID, клиенту, телефону, email, городу, адресу
  sort asc|desc
    - направление сортировки по дате
  reset
    - сбросить фильтры
  open <orderID>
    - открыть заказ для редактирования
  items begin|cancel|commit|add
  items clone|remove|inc|dec <itemID>
  items size <itemID> <размер>
  items product <itemID> <sku>
    - редактирование состава открытого заказа
  save
    - сохранить открытый заказ
  comment <текст>
    - комментарий к открытому заказу
  copy
    - скопировать сводку открытого заказа
  delete <orderID> [причина]
    - удалить заказ`)
}

func (h *Handler) handleExit(args []string) {
	fmt.Println("Выход из приложения.")
	os.Exit(0)
}

func (h *Handler) handleList(args []string) {
	page := 1
	if len(args) >= 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			page = n
		}
	}
	h.printList(page)
}

func (h *Handler) printList(page int) {
	res, err := h.svc.ListOrders(h.filters, h.dir, page, pipeline.DefaultPageSize)
	if err != nil {
		fmt.Printf("Ошибка list: %v\n", err)
		return
	}
	if len(res.Orders) == 0 {
		fmt.Println("Заказов по текущим фильтрам нет.")
		return
	}
	fmt.Printf("Показаны %d–%d из %d (страница %d из %d):\n",
		res.Start+1, res.End, res.Total, res.Number, res.Count)
	for _, o := range res.Orders {
		fmt.Printf("  #%d  %s  %s  %s  %s  Итого: %d ₽\n",
			o.ID, o.Date, o.Client.Name, o.Status, o.PaymentStatus, o.Total())
	}
}

// handleSearch defers the refresh through the debouncer so rapid repeated
// searches only re-filter once. The callback fires on the timer goroutine,
// so it takes the lock itself before touching handler state.
func (h *Handler) handleSearch(args []string) {
	h.filters.Search = strings.Join(args, " ")
	h.search.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.printList(1)
	})
}

func (h *Handler) handleSort(args []string) {
	if len(args) == 1 && pipeline.Direction(args[0]) == pipeline.Asc {
		h.dir = pipeline.Asc
	} else if len(args) == 1 && pipeline.Direction(args[0]) == pipeline.Desc {
		h.dir = pipeline.Desc
	} else {
		h.dir = h.dir.Toggle()
	}
	fmt.Printf("Сортировка по дате: %s\n", h.dir)
	h.printList(1)
}

func (h *Handler) handleReset(args []string) {
	if h.filters.Empty() {
		fmt.Println("Фильтры уже пусты.")
		return
	}
	h.filters = pipeline.Criteria{}
	fmt.Println("Фильтры сброшены.")
	h.printList(1)
}

func (h *Handler) handleOpen(args []string) {
	if len(args) != 1 {
		fmt.Println("Формат: open <orderID>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Неверный ID: %v\n", err)
		return
	}
	o, err := h.svc.GetOrder(id)
	if err != nil {
		fmt.Printf("Ошибка open: %v\n", err)
		return
	}
	h.current = o
	h.session = editor.NewSession(o, h.cat)
	fmt.Printf("Открыт заказ #%d (%s, %s), позиций: %d, к оплате: %d ₽\n",
		o.ID, o.Status, o.PaymentStatus, o.ItemCount(), o.GrandTotal())
	for i, it := range o.Items {
		fmt.Printf("  %d. [%d] %s  %s  размер %s  x%d  %d ₽\n",
			i+1, it.ID, it.Name, it.SKU, it.Size, it.Quantity, it.Sum())
	}
}

func (h *Handler) handleItems(args []string) {
	if h.session == nil {
		fmt.Println("Сначала откройте заказ: open <orderID>")
		return
	}
	if len(args) < 1 {
		fmt.Println("Формат: items begin|cancel|commit|add|clone|remove|inc|dec|size|product ...")
		return
	}

	var err error
	switch args[0] {
	case "begin":
		err = h.session.Begin()
	case "cancel":
		err = h.session.Cancel()
	case "commit":
		err = h.session.Commit()
	case "add":
		var it models.OrderItem
		if it, err = h.session.AddItem(); err == nil {
			fmt.Printf("Добавлена позиция [%d]\n", it.ID)
		}
	case "clone", "remove", "inc", "dec":
		if len(args) != 2 {
			fmt.Printf("Формат: items %s <itemID>\n", args[0])
			return
		}
		var id int64
		if id, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			fmt.Printf("Неверный itemID: %v\n", err)
			return
		}
		switch args[0] {
		case "clone":
			err = h.session.CloneItem(id)
		case "remove":
			err = h.session.RemoveItem(id)
		case "inc":
			err = h.session.IncQuantity(id)
		case "dec":
			err = h.session.DecQuantity(id)
		}
	case "size":
		if len(args) != 3 {
			fmt.Println("Формат: items size <itemID> <размер>")
			return
		}
		var id int64
		if id, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			fmt.Printf("Неверный itemID: %v\n", err)
			return
		}
		err = h.session.SetSize(id, args[2])
	case "product":
		if len(args) != 3 {
			fmt.Println("Формат: items product <itemID> <sku>")
			return
		}
		var id int64
		if id, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			fmt.Printf("Неверный itemID: %v\n", err)
			return
		}
		if err = h.session.SetProductBySKU(id, args[2]); err == nil {
			fmt.Printf("Размеры: %s\n", strings.Join(catalog.SizesForSKU(h.cat, args[2]), ", "))
		}
	default:
		fmt.Printf("Неизвестная подкоманда items: %s\n", args[0])
		return
	}
	if err != nil {
		fmt.Printf("Ошибка items %s: %v\n", args[0], err)
		return
	}
	fmt.Printf("Позиций: %d, редактирование: %v\n", len(h.current.Items), h.session.Editing())
}

func (h *Handler) handleSave(args []string) {
	if h.current == nil {
		fmt.Println("Сначала откройте заказ: open <orderID>")
		return
	}
	if h.session != nil && h.session.Editing() {
		fmt.Println("Завершите редактирование состава: items commit или items cancel")
		return
	}
	if err := h.svc.SaveOrder(context.Background(), h.current); err != nil {
		fmt.Printf("Ошибка save: %v\n", err)
		return
	}
	fmt.Printf("Изменения заказа #%d сохранены\n", h.current.ID)
}

func (h *Handler) handleComment(args []string) {
	if h.current == nil {
		fmt.Println("Сначала откройте заказ: open <orderID>")
		return
	}
	text := strings.Join(args, " ")
	comment, err := h.svc.AddComment(context.Background(), h.current.ID, text)
	if err != nil {
		fmt.Printf("Ошибка comment: %v\n", err)
		return
	}
	fmt.Printf("Комментарий добавлен (%s, %s)\n", comment.Author, comment.Date)
}

func (h *Handler) handleCopy(args []string) {
	if h.current == nil {
		fmt.Println("Сначала откройте заказ: open <orderID>")
		return
	}
	_, copied, err := h.sum.Copy(h.current)
	if err != nil {
		fmt.Printf("Ошибка copy: %v\n", err)
		return
	}
	if copied {
		fmt.Println("Сводка заказа скопирована")
	}
}

func (h *Handler) handleDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Формат: delete <orderID> [причина]")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Неверный ID: %v\n", err)
		return
	}
	reason := strings.Join(args[1:], " ")
	if err := h.svc.DeleteOrder(context.Background(), id, reason); err != nil {
		fmt.Printf("Ошибка delete: %v\n", err)
		return
	}
	if h.current != nil && h.current.ID == id {
		h.current = nil
		h.session = nil
	}
	fmt.Printf("Заказ %d удалён\n", id)
}
