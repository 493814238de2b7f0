package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails the operator a summary of each paid order.
type EmailNotifier struct {
	cfg    SMTPConfig
	symbol string
	send   SendFunc
}

func NewEmailNotifier(cfg SMTPConfig, currencySymbol string) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, symbol: currencySymbol, send: smtp.SendMail}
}

func (e *EmailNotifier) NotifyOrderPaid(ctx context.Context, order *domain.CheckoutOrder) error {
	if len(e.cfg.To) == 0 {
		return fmt.Errorf("no operator address configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	msg := e.message(order)
	if err := e.send(e.cfg.Host+":"+e.cfg.Port, auth, e.cfg.From, e.cfg.To, msg); err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	return nil
}

func (e *EmailNotifier) message(order *domain.CheckoutOrder) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: New paid order %s\r\n", order.Reference)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")

	fmt.Fprintf(&b, "Reference: %s\r\n", order.Reference)
	fmt.Fprintf(&b, "Customer: %s <%s>, %s\r\n", order.Customer.FullName, order.Customer.Email, order.Customer.Phone)
	if order.Customer.Address != "" {
		fmt.Fprintf(&b, "Address: %s\r\n", order.Customer.Address)
	}
	b.WriteString("\r\nItems:\r\n")
	for _, item := range order.Cart {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		if v := item.VariantValue(); v != "" {
			name += " (" + v + ")"
		}
		fmt.Fprintf(&b, "  %d x %s @ %s\r\n", item.Quantity, name, checkout.FormatAmount(e.symbol, item.UnitPrice))
	}
	fmt.Fprintf(&b, "\r\nSubtotal: %s\r\n", checkout.FormatAmount(e.symbol, order.Subtotal))
	fmt.Fprintf(&b, "Waybill: %s\r\n", checkout.FormatAmount(e.symbol, order.ShippingFee))
	fmt.Fprintf(&b, "Total: %s\r\n", checkout.FormatAmount(e.symbol, order.Total))
	return []byte(b.String())
}
