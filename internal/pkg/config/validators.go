// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// problems collects every validation failure so a bad deployment reports all
// of them at once
type problems []error

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Errorf(format, args...))
}

func (p *problems) missing(what string) {
	*p = append(*p, fmt.Errorf("%w: %s", ErrMissingRequiredConfig, what))
}

func (p problems) err() error {
	return errors.Join(p...)
}

// BasicValidator checks the settings every environment needs
type BasicValidator struct{}

// Validate returns all problems found, joined
func (v *BasicValidator) Validate(cfg *Config) error {
	var p problems

	validateRequiredFields(&p, reflect.ValueOf(*cfg), "")

	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		p.addf("database max_connections (%d) must be >= min_connections (%d)",
			cfg.Database.MaxConnections, cfg.Database.MinConnections)
	}
	if cfg.Database.LockTimeout <= 0 {
		p.addf("database lock_timeout must be positive")
	}

	if cfg.Redis.PoolSize <= 0 {
		p.addf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests < 0 {
		p.addf("rate_limit_requests must not be negative")
	}
	if cfg.Security.RateLimitRequests > 0 && cfg.Security.RateLimitDuration <= 0 {
		p.addf("rate_limit_duration must be positive when rate limiting is on")
	}

	validatePurchasing(&p, cfg)
	validateStorage(&p, cfg)
	validateWorkers(&p, cfg)
	validateNotifications(&p, cfg.Notifications)

	return p.err()
}

func validatePurchasing(p *problems, cfg *Config) {
	if cfg.Purchasing.ExpiringWindowDays <= 0 {
		p.addf("expiring_window_days must be positive")
	}
	if cfg.Purchasing.CacheTTL < 0 || cfg.Purchasing.ListCacheTTL < 0 || cfg.Purchasing.EmployeeCacheTTL < 0 {
		p.addf("purchasing cache ttls must not be negative")
	}
	if cfg.FileProcessing.PDFMaxSizeMB <= 0 || cfg.FileProcessing.ExcelMaxSizeMB <= 0 {
		p.addf("upload size limits must be positive")
	}
}

func validateStorage(p *problems, cfg *Config) {
	switch cfg.Storage.Driver {
	case "s3":
		if cfg.AWS.S3Bucket == "" {
			p.missing("s3 bucket")
		}
		if cfg.AWS.Region == "" {
			p.missing("aws region")
		}
	case "local":
		if cfg.Storage.LocalDir == "" {
			p.missing("local storage dir")
		}
	default:
		p.addf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func validateWorkers(p *problems, cfg *Config) {
	if cfg.Asynq.RetryMax < 0 {
		p.addf("asynq retry_max must not be negative")
	}
	for name, spec := range map[string]string{
		"audit":     cfg.Asynq.AuditCron,
		"alerts":    cfg.Asynq.AlertsCron,
		"cleanup":   cfg.Asynq.CleanupCron,
		"dashboard": cfg.Asynq.DashboardCron,
	} {
		if spec != "" && !plausibleCron(spec) {
			p.addf("%s cron %q is not a 5-field spec or descriptor", name, spec)
		}
	}
}

// plausibleCron accepts five-field specs and the @-descriptors the scheduler
// understands; the scheduler does the real parsing
func plausibleCron(spec string) bool {
	if strings.HasPrefix(spec, "@") {
		return len(spec) > 1
	}
	return len(strings.Fields(spec)) == 5
}

func validateNotifications(p *problems, n NotificationsConfig) {
	if n.SMTPHost == "" {
		return
	}
	if n.SMTPPort <= 0 {
		p.addf("smtp port must be positive when smtp host is set")
	}
	if n.From == "" {
		p.missing("smtp from address")
	}
	if len(n.Recipients) == 0 {
		p.missing("stock alert recipients")
	}
}

// ProductionValidator adds the checks that only matter in production
type ProductionValidator struct{}

// Validate returns all problems found, joined
func (v *ProductionValidator) Validate(cfg *Config) error {
	var p problems

	if cfg.Database.Password == "" || strings.HasPrefix(cfg.Database.Password, "MISSING_") {
		p.missing("database password")
	}
	if cfg.Database.SSLMode == "disable" {
		p.addf("database SSL must be enabled in production")
	}
	if !cfg.Security.SecureHeaders {
		p.addf("secure headers must be enabled in production")
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		p.addf("allowed origins must be configured in production")
	}
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			p.addf("wildcard origin (*) not allowed in production")
			break
		}
	}
	if cfg.Security.UserIDHeader == "" {
		p.missing("user id header")
	}
	if cfg.Server.TLSEnabled && (cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "") {
		p.addf("TLS cert and key files must be provided when TLS is enabled")
	}
	if cfg.Storage.Driver == "local" {
		p.addf("local storage is not allowed in production")
	}

	return p.err()
}

// validateRequiredFields walks v and reports every field tagged
// required:"true" that is empty or still holds a MISSING_ placeholder
func validateRequiredFields(p *problems, v reflect.Value, prefix string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field, meta := v.Field(i), t.Field(i)
		name := meta.Name
		if prefix != "" {
			name = prefix + "." + name
		}

		if meta.Tag.Get("required") == "true" && isUnset(field) {
			p.missing(name)
		}
		if field.Kind() == reflect.Struct {
			validateRequiredFields(p, field, name)
		}
	}
}

func isUnset(v reflect.Value) bool {
	if v.Kind() == reflect.String {
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	}
	return v.IsZero()
}
