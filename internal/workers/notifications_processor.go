// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
)

// SendMailFunc matches smtp.SendMail
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationProcessor mails the daily stock alert
type NotificationProcessor struct {
	products ports.ProductService
	config   config.NotificationsConfig
	logOnly  bool
	sendMail SendMailFunc
	logger   *slog.Logger
}

// NewNotificationProcessor creates a new notification processor. In
// development, or without an SMTP host, alerts are only logged.
func NewNotificationProcessor(products ports.ProductService, cfg *config.Config, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		products: products,
		config:   cfg.Notifications,
		logOnly:  cfg.IsDevelopment() || cfg.Notifications.SMTPHost == "",
		sendMail: smtp.SendMail,
		logger:   logger.With(slog.String("processor", "notification")),
	}
}

// WithSendMail replaces the SMTP transport and forces delivery
func (p *NotificationProcessor) WithSendMail(fn SendMailFunc) *NotificationProcessor {
	p.sendMail = fn
	p.logOnly = false
	return p
}

// SendStockAlerts mails the products below their minimum and the ones about
// to expire. Nothing is sent when both lists are empty.
func (p *NotificationProcessor) SendStockAlerts(ctx context.Context, t *asynq.Task) error {
	low, err := p.products.FindBelowMinimum(ctx)
	if err != nil {
		return err
	}
	expiring, err := p.products.FindExpiringSoon(ctx)
	if err != nil {
		return err
	}

	if len(low) == 0 && len(expiring) == 0 {
		p.logger.InfoContext(ctx, "no stock alerts today")
		return nil
	}

	subject := fmt.Sprintf("Stock alert: %d below minimum, %d expiring", len(low), len(expiring))
	body := alertBody(low, expiring)

	if p.logOnly || len(p.config.Recipients) == 0 {
		p.logger.InfoContext(ctx, "email would be sent",
			slog.Any("to", p.config.Recipients),
			slog.String("subject", subject),
			slog.String("body", body))
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		p.config.From, strings.Join(p.config.Recipients, ", "), subject, body,
	))

	var auth smtp.Auth
	if p.config.SMTPUser != "" {
		auth = smtp.PlainAuth("", p.config.SMTPUser, p.config.SMTPPass, p.config.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", p.config.SMTPHost, p.config.SMTPPort)
	if err := p.sendMail(addr, auth, p.config.From, p.config.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.InfoContext(ctx, "stock alert sent",
		slog.Int("below_minimum", len(low)),
		slog.Int("expiring", len(expiring)))
	return nil
}

func alertBody(low, expiring []*domain.Product) string {
	var b strings.Builder
	if len(low) > 0 {
		b.WriteString("Below minimum stock:\n")
		for _, p := range low {
			fmt.Fprintf(&b, "  %-12s %-40s stock %d (min %d)\n", p.SKU, p.Name, p.Stock, p.StockMin)
		}
		b.WriteString("\n")
	}
	if len(expiring) > 0 {
		b.WriteString("Expiring soon:\n")
		for _, p := range expiring {
			date := "-"
			if p.ExpirationDate != nil {
				date = p.ExpirationDate.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "  %-12s %-40s expires %s, stock %d\n", p.SKU, p.Name, date, p.Stock)
		}
	}
	return b.String()
}
