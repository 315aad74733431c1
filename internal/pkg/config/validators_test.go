// internal/pkg/config/validators_test.go
package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/test/helpers"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *config.Config)
		wantErrs []string
	}{
		{name: "test_config_is_valid", mutate: func(c *config.Config) {}},
		{
			name: "reports_every_problem",
			mutate: func(c *config.Config) {
				c.Database.Host = ""
				c.Database.LockTimeout = 0
				c.Storage.Driver = "ftp"
			},
			wantErrs: []string{"Database.Host", "lock_timeout", `unknown storage driver "ftp"`},
		},
		{
			name:     "placeholder_counts_as_missing",
			mutate:   func(c *config.Config) { c.Database.User = "MISSING_DB_USER" },
			wantErrs: []string{"Database.User"},
		},
		{
			name:     "rate_limit_needs_a_window",
			mutate:   func(c *config.Config) { c.Security.RateLimitDuration = 0 },
			wantErrs: []string{"rate_limit_duration"},
		},
		{
			name:   "rate_limit_can_be_disabled",
			mutate: func(c *config.Config) { c.Security.RateLimitRequests = 0; c.Security.RateLimitDuration = 0 },
		},
		{
			name: "bad_cron_spec",
			mutate: func(c *config.Config) {
				c.Asynq.AuditCron = "0 2 * *"
				c.Asynq.CleanupCron = "@daily"
			},
			wantErrs: []string{`audit cron "0 2 * *"`},
		},
		{
			name:     "smtp_needs_recipients",
			mutate:   func(c *config.Config) { c.Notifications.SMTPHost = "smtp.bodega.pe"; c.Notifications.SMTPPort = 587; c.Notifications.From = "alertas@bodega.pe" },
			wantErrs: []string{"stock alert recipients"},
		},
		{
			name:     "s3_needs_bucket",
			mutate:   func(c *config.Config) { c.Storage.Driver = "s3"; c.AWS.Region = "us-east-1" },
			wantErrs: []string{"s3 bucket"},
		},
		{
			name: "production_is_strict",
			mutate: func(c *config.Config) {
				c.App.Environment = "production"
				c.Database.Password = ""
			},
			wantErrs: []string{
				"database password",
				"database SSL",
				"secure headers",
				"wildcard origin",
				"local storage is not allowed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.LoadTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.wantErrs) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			for _, want := range tt.wantErrs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestConfig_Validate_MissingIsSentinel(t *testing.T) {
	cfg := helpers.LoadTestConfig()
	cfg.App.Name = ""
	cfg.Purchasing.ListCacheTTL = time.Minute

	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingRequiredConfig)
}
