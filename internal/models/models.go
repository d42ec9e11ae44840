package models

type OrderStatus string

const (
	StatusNew                OrderStatus = "NEW"
	StatusReserveAttemption  OrderStatus = "RESERVE_ATTEMPTION"
	StatusReserved           OrderStatus = "RESERVED"
	StatusConfirmed          OrderStatus = "CONFIRMED"
	StatusNeedsClarification OrderStatus = "NEEDS_CLARIFICATION"
	StatusShipping           OrderStatus = "SHIPPING"
	StatusDelivered          OrderStatus = "DELIVERED"
	StatusCanceled           OrderStatus = "CANCELED"
	StatusCompleted          OrderStatus = "COMPLETED"
)

// Statuses is the fixed display sequence. Position in the slice is
// meaningful: the admin panel renders the chain left to right and compares
// indices to tell past steps from current and future ones. Transitions are
// not restricted, any status can be assigned from any other.
var Statuses = []OrderStatus{
	StatusNew,
	StatusReserveAttemption,
	StatusReserved,
	StatusConfirmed,
	StatusNeedsClarification,
	StatusShipping,
	StatusDelivered,
	StatusCanceled,
	StatusCompleted,
}

// Index returns the position of s in the display sequence, -1 for an
// unknown label.
func (s OrderStatus) Index() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool {
	return s.Index() >= 0
}

// Before reports whether s comes earlier than other in the display sequence.
func (s OrderStatus) Before(other OrderStatus) bool {
	return s.Index() < other.Index()
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Оплачен"
	PaymentUnpaid PaymentStatus = "Не оплачен"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPaid || p == PaymentUnpaid
}

type Client struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Delivery struct {
	Type     string `json:"type"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Cost     int    `json:"cost"`
	Date     string `json:"date"`
	Interval string `json:"interval"`
	Comment  string `json:"comment"`
}

// Recipient is the optional alternate delivery recipient. Name and phone
// only matter while Enabled is set.
type Recipient struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

type Comment struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Date   string `json:"date"`
	Text   string `json:"text"`
}

// OrderItem is one product line inside an order. Size stays a string because
// it is product-dependent: ring sizes are numbers, most other products carry
// the "—" placeholder.
type OrderItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

func (i OrderItem) Sum() int {
	return i.Price * i.Quantity
}

type Order struct {
	ID               int           `json:"id"`
	Date             string        `json:"date"`
	Client           Client        `json:"client"`
	Delivery         Delivery      `json:"delivery"`
	Discount         int           `json:"discount"`
	Payment          string        `json:"payment"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	Status           OrderStatus   `json:"status"`
	NeedConfirmation bool          `json:"needConfirmation"`
	NeedManagerHelp  bool          `json:"needManagerHelp"`
	Recipient        Recipient     `json:"recipient"`
	Comments         []Comment     `json:"comments"`
	Items            []OrderItem   `json:"items"`
}

// ItemCount is the summed quantity over all lines, not the number of lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o *Order) Subtotal() int {
	sum := 0
	for _, it := range o.Items {
		sum += it.Sum()
	}
	return sum
}

// Total is the amount the cost filter and the order summary operate on:
// item subtotal minus discount, delivery not included.
func (o *Order) Total() int {
	return o.Subtotal() - o.Discount
}

// GrandTotal additionally includes the delivery cost.
func (o *Order) GrandTotal() int {
	return o.Total() + o.Delivery.Cost
}

// Clone returns a deep copy, so edits on the copy never leak into a stored
// order before an explicit save.
func (o *Order) Clone() *Order {
	c := *o
	c.Comments = append([]Comment(nil), o.Comments...)
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}

const (
	DefaultPayment      = "Карта"
	DefaultDeliveryType = "Курьер"
)

// Normalize completes a partial order record with defaults so the edit form
// never dereferences an absent field: unknown status becomes NEW, unknown
// payment status becomes unpaid, nil slices become empty ones. The input is
// not modified.
func Normalize(raw *Order) *Order {
	o := &Order{}
	if raw != nil {
		o = raw.Clone()
	}
	if !o.Status.Valid() {
		o.Status = StatusNew
	}
	if !o.PaymentStatus.Valid() {
		o.PaymentStatus = PaymentUnpaid
	}
	if o.Payment == "" {
		o.Payment = DefaultPayment
	}
	if o.Delivery.Type == "" {
		o.Delivery.Type = DefaultDeliveryType
	}
	if o.Comments == nil {
		o.Comments = []Comment{}
	}
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	return o
}
