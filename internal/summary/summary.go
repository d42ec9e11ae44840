// Package summary renders the copyable order summary and hands it to a
// clipboard. Clipboard access is behind an interface so the HTTP layer, a
// terminal, or tests can supply their own.
package summary

import (
	"fmt"
	"io"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

// Render formats the fixed multi-line summary template.
func Render(o *models.Order) string {
	return fmt.Sprintf(`Заказ #%d — %s
Тел: %s
Email: %s
Доставка: %s, %s, %s
Оплата: %s (%s)
Позиций: %d
Итого: %d ₽`,
		o.ID, o.Client.Name,
		o.Client.Phone,
		o.Client.Email,
		o.Delivery.Type, o.Delivery.City, o.Delivery.Address,
		o.Payment, o.PaymentStatus,
		o.ItemCount(),
		o.Total(),
	)
}

// Clipboard is the system clipboard stand-in.
type Clipboard interface {
	Write(text string) error
}

// Service copies a summary to the clipboard, falling back to displaying the
// text on the writer when clipboard access fails.
type Service struct {
	cb       Clipboard
	fallback io.Writer
}

func NewService(cb Clipboard, fallback io.Writer) *Service {
	return &Service{cb: cb, fallback: fallback}
}

// Copy returns the rendered text and whether it reached the clipboard.
// On clipboard failure the text is written to the fallback instead; only a
// fallback write error is reported.
func (s *Service) Copy(o *models.Order) (string, bool, error) {
	text := Render(o)
	if s.cb != nil {
		if err := s.cb.Write(text); err == nil {
			return text, true, nil
		}
	}
	if s.fallback != nil {
		if _, err := io.WriteString(s.fallback, text+"\n"); err != nil {
			return text, false, fmt.Errorf("показ сводки: %w", err)
		}
	}
	return text, false, nil
}
