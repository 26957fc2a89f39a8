package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// Notifier delivers order notifications over email and the staff messenger.
// Every delivery is best-effort: failures are logged and swallowed so they
// can never affect the operation that triggered them.
type Notifier struct {
	mail       MailSender
	messenger  Messenger
	adminEmail string
	logger     *slog.Logger
}

// NewNotifier constructs the notifier. Either channel may be nil when the
// corresponding provider is not configured.
func NewNotifier(mail MailSender, messenger Messenger, adminEmail string, logger *slog.Logger) *Notifier {
	return &Notifier{mail: mail, messenger: messenger, adminEmail: adminEmail, logger: logger}
}

func (n *Notifier) sendMail(to, subject, body string) {
	if n.mail == nil || to == "" {
		return
	}
	if err := n.mail.Send(to, subject, body); err != nil {
		n.logger.Error("send email failed", slog.String("to", to), slog.String("error", err.Error()))
	}
}

func (n *Notifier) sendMessage(text string) {
	if n.messenger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.messenger.SendMessage(ctx, text); err != nil {
		n.logger.Error("send message failed", slog.String("error", err.Error()))
	}
}

// OrderCreated alerts staff about a new order.
func (n *Notifier) OrderCreated(order *model.Order) {
	if body, err := renderOrder(newOrderTemplate, order); err == nil {
		n.sendMail(n.adminEmail, "New order "+order.ID, body)
	} else {
		n.logger.Error("render new order mail", slog.String("error", err.Error()))
	}
	n.sendMessage(fmt.Sprintf("🛒 New order %s: %.2f", order.ID, order.TotalPrice))
}

// OrderPaid sends the purchase receipt and the paid notification.
func (n *Notifier) OrderPaid(order *model.Order) {
	to := ""
	if order.PaymentResult != nil {
		to = order.PaymentResult.PayerEmail
	}
	if body, err := renderOrder(receiptTemplate, order); err == nil {
		n.sendMail(to, "Receipt for order "+order.ID, body)
	} else {
		n.logger.Error("render receipt mail", slog.String("error", err.Error()))
	}
	n.sendMessage(fmt.Sprintf("💰 Order %s paid: %.2f", order.ID, order.TotalPrice))
}

// OrderDelivered sends the review request and the delivered notification.
func (n *Notifier) OrderDelivered(order *model.Order) {
	to := ""
	if order.PaymentResult != nil {
		to = order.PaymentResult.PayerEmail
	}
	if body, err := renderOrder(reviewTemplate, order); err == nil {
		n.sendMail(to, "How was your order "+order.ID+"?", body)
	} else {
		n.logger.Error("render review mail", slog.String("error", err.Error()))
	}
	n.sendMessage(fmt.Sprintf("📦 Order %s delivered", order.ID))
}
