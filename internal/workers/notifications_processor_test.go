// internal/workers/notifications_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/workers"
	"github.com/ammerola/backoffice-be/test/helpers"
	"github.com/ammerola/backoffice-be/test/mocks"
)

type sentMail struct {
	addr string
	to   []string
	msg  string
}

func TestNotificationProcessor_SendStockAlerts(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 3)
	low := helpers.CreateTestProduct(func(p *domain.Product) { p.Stock = 2 })
	milk := helpers.CreateTestProduct(func(p *domain.Product) {
		p.SKU = "LEC-1L"
		p.Name = "Leche 1L"
		p.HasExpiration = true
		p.ExpirationDate = &expiry
	})

	tests := []struct {
		name       string
		low        []*domain.Product
		expiring   []*domain.Product
		recipients []string
		sendErr    error
		wantSent   bool
		wantErr    bool
	}{
		{
			name:       "sends_both_lists",
			low:        []*domain.Product{low},
			expiring:   []*domain.Product{milk},
			recipients: []string{"almacen@example.com"},
			wantSent:   true,
		},
		{
			name:       "nothing_to_report",
			recipients: []string{"almacen@example.com"},
		},
		{
			name:     "no_recipients_only_logs",
			low:      []*domain.Product{low},
			wantSent: false,
		},
		{
			name:       "smtp_failure_is_returned",
			low:        []*domain.Product{low},
			recipients: []string{"almacen@example.com"},
			sendErr:    errors.New("421 service not available"),
			wantSent:   true,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			products := mocks.NewMockProductService(ctrl)
			products.EXPECT().FindBelowMinimum(gomock.Any()).Return(tt.low, nil)
			products.EXPECT().FindExpiringSoon(gomock.Any()).Return(tt.expiring, nil)

			cfg := helpers.LoadTestConfig()
			cfg.Notifications.SMTPHost = "smtp.example.com"
			cfg.Notifications.SMTPPort = 587
			cfg.Notifications.From = "backoffice@example.com"
			cfg.Notifications.Recipients = tt.recipients

			var sent []sentMail
			p := workers.NewNotificationProcessor(products, cfg, helpers.TestLogger()).
				WithSendMail(func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
					sent = append(sent, sentMail{addr: addr, to: to, msg: string(msg)})
					return tt.sendErr
				})

			err := p.SendStockAlerts(context.Background(), asynq.NewTask(workers.TypeStockAlerts, nil))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if !tt.wantSent {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Equal(t, "smtp.example.com:587", sent[0].addr)
			assert.Equal(t, tt.recipients, sent[0].to)
			assert.Contains(t, sent[0].msg, "Subject: Stock alert")
			assert.Contains(t, sent[0].msg, "ARZ-5")
			if len(tt.expiring) > 0 {
				assert.Contains(t, sent[0].msg, "LEC-1L")
				assert.Contains(t, sent[0].msg, expiry.Format("2006-01-02"))
			}
		})
	}
}

func TestNotificationProcessor_DevelopmentOnlyLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := mocks.NewMockProductService(ctrl)
	products.EXPECT().FindBelowMinimum(gomock.Any()).Return([]*domain.Product{helpers.CreateTestProduct()}, nil)
	products.EXPECT().FindExpiringSoon(gomock.Any()).Return(nil, nil)

	cfg := helpers.LoadTestConfig()
	cfg.App.Environment = "development"
	cfg.Notifications.SMTPHost = "smtp.example.com"
	cfg.Notifications.Recipients = []string{"almacen@example.com"}

	p := workers.NewNotificationProcessor(products, cfg, helpers.TestLogger())
	require.NoError(t, p.SendStockAlerts(context.Background(), asynq.NewTask(workers.TypeStockAlerts, nil)))
}
