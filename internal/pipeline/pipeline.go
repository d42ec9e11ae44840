// Package pipeline narrows, orders and slices the order collection for the
// list view. All functions are pure over the input slice: they never modify
// the orders themselves.
package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/dates"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

const DefaultPageSize = 5

// TriState is the "needs confirmation" filter: yes, no, or any.
type TriState string

const (
	Any TriState = ""
	Yes TriState = "yes"
	No  TriState = "no"
)

// Criteria is one filter record. An empty/unset field means the clause is
// skipped; all active clauses are AND-combined.
type Criteria struct {
	Search       string
	DeliveryType string
	PayMethod    string
	PayStatus    models.PaymentStatus
	OrderStatus  models.OrderStatus
	CostMin      *int
	CostMax      *int
	NeedConfirm  TriState
	DateFrom     time.Time // day granularity, inclusive
	DateTo       time.Time // day granularity, inclusive
}

// Empty reports whether no clause is active, i.e. Filter would return the
// input unchanged.
func (c Criteria) Empty() bool {
	return c.Search == "" && c.DeliveryType == "" && c.PayMethod == "" &&
		c.PayStatus == "" && c.OrderStatus == "" &&
		c.CostMin == nil && c.CostMax == nil && c.NeedConfirm == Any &&
		c.DateFrom.IsZero() && c.DateTo.IsZero()
}

// Filter returns the orders satisfying every active clause of c, preserving
// the input order.
func Filter(orders []*models.Order, c Criteria) []*models.Order {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	var from, to time.Time
	if !c.DateFrom.IsZero() {
		from = dayStart(c.DateFrom)
	}
	if !c.DateTo.IsZero() {
		to = dayEnd(c.DateTo)
	}

	res := make([]*models.Order, 0, len(orders))
	for _, o := range orders {
		if matches(o, c, search, from, to) {
			res = append(res, o)
		}
	}
	return res
}

func matches(o *models.Order, c Criteria, search string, from, to time.Time) bool {
	if search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			strconv.Itoa(o.ID),
			o.Client.Name,
			o.Client.Phone,
			o.Client.Email,
			o.Delivery.City,
			o.Delivery.Address,
		}, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	if c.OrderStatus != "" && o.Status != c.OrderStatus {
		return false
	}
	if c.PayStatus != "" && o.PaymentStatus != c.PayStatus {
		return false
	}
	if c.PayMethod != "" && o.Payment != c.PayMethod {
		return false
	}
	if c.DeliveryType != "" && o.Delivery.Type != c.DeliveryType {
		return false
	}
	total := o.Total()
	if c.CostMin != nil && total < *c.CostMin {
		return false
	}
	if c.CostMax != nil && total > *c.CostMax {
		return false
	}
	switch c.NeedConfirm {
	case Yes:
		if !o.NeedConfirmation {
			return false
		}
	case No:
		if o.NeedConfirmation {
			return false
		}
	}
	if !from.IsZero() || !to.IsZero() {
		// A malformed order date parses to the zero time and therefore
		// falls before any lower bound, same as the historical behavior.
		ts, _ := dates.Parse(o.Date)
		if !from.IsZero() && ts.Before(from) {
			return false
		}
		if !to.IsZero() && ts.After(to) {
			return false
		}
	}
	return true
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Toggle flips the sort direction, the only sort control the list exposes.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortByDate returns a new slice ordered by the order date. The comparator
// uses the same parser as the date filter so the two never disagree; ties
// keep their incoming relative order.
func SortByDate(orders []*models.Order, dir Direction) []*models.Order {
	res := append([]*models.Order(nil), orders...)
	sort.SliceStable(res, func(i, j int) bool {
		ti, _ := dates.Parse(res[i].Date)
		tj, _ := dates.Parse(res[j].Date)
		if dir == Asc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	return res
}

// Page is one slice of the filtered collection.
type Page struct {
	Orders []*models.Order
	Number int // clamped to [1, Count]
	Count  int
	Start  int // zero-based index of the first shown order
	End    int // exclusive
	Total  int
}

// Paginate slices orders into the requested page. The page number is clamped
// into [1, pageCount], so a stale page after a narrowing filter shows the
// last page instead of an empty one.
func Paginate(orders []*models.Order, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	count := (len(orders) + perPage - 1) / perPage
	if count < 1 {
		count = 1
	}
	if page < 1 {
		page = 1
	}
	if page > count {
		page = count
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(orders) {
		end = len(orders)
	}
	return Page{
		Orders: orders[start:end],
		Number: page,
		Count:  count,
		Start:  start,
		End:    end,
		Total:  len(orders),
	}
}
