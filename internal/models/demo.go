package models

// DemoOrders returns the two seed records the store starts with when its
// data file is empty. Each call builds fresh copies.
func DemoOrders() []*Order {
	return []*Order{
		{
			ID:   1001,
			Date: "15.01.2025 13:30",
			Client: Client{
				Name:  "Иванов Иван Иванович",
				Phone: "+7 (999) 123-45-67",
				Email: "ivanov@example.com",
			},
			Delivery: Delivery{
				Type:    "Курьер",
				City:    "Москва",
				Address: "ул. Ленина, д. 10, кв. 25",
			},
			Discount:      500,
			Payment:       "Карта",
			PaymentStatus: PaymentPaid,
			Status:        StatusConfirmed,
			Comments:      []Comment{},
			Items: []OrderItem{
				{ID: 1, Name: "Кольцо с бриллиантом", SKU: "KB-001", Size: "17", Quantity: 2, Price: 7950},
			},
		},
		{
			ID:   1002,
			Date: "16.01.2025 11:10",
			Client: Client{
				Name:  "Петров Петр",
				Phone: "+7 (921) 555-44-33",
				Email: "petrov@example.com",
			},
			Delivery: Delivery{
				Type:    "Самовывоз",
				City:    "Санкт-Петербург",
				Address: "Невский пр., 20",
			},
			Payment:       "СБП",
			PaymentStatus: PaymentUnpaid,
			Status:        StatusReserved,
			Comments:      []Comment{},
			Items: []OrderItem{
				{ID: 2, Name: "Серьги золотые", SKU: "ER-210", Size: "—", Quantity: 1, Price: 5600},
				{ID: 3, Name: "Подвеска с сапфиром", SKU: "PN-078", Size: "—", Quantity: 1, Price: 11200},
			},
		},
	}
}
