// internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig is returned when a required setting is empty or a placeholder
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Asynq          AsynqConfig
	AWS            AWSConfig
	Storage        StorageConfig
	FileProcessing FileProcessingConfig
	Purchasing     PurchasingConfig
	Notifications  NotificationsConfig
	Security       SecurityConfig
	Server         ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string `required:"true"`
	Port               string `required:"true"`
	User               string `required:"true"`
	Password           string
	Name               string `required:"true"`
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	LockTimeout        time.Duration
	EnableQueryLogging bool
	MigrationPath      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	TTL             time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	RetryMax        int
	ShutdownTimeout time.Duration
	AuditCron       string
	AlertsCron      string
	CleanupCron     string
	DashboardCron   string
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool
	SecretsEnabled  bool
	SecretName      string
}

// StorageConfig selects where uploads and exports are kept
type StorageConfig struct {
	Driver     string // s3, local
	LocalDir   string
	PresignTTL time.Duration
}

// FileProcessingConfig holds file processing configuration
type FileProcessingConfig struct {
	PDFMaxSizeMB      int
	ExcelMaxSizeMB    int
	ProcessingTimeout time.Duration
	TempDir           string
	TempFileMaxAge    time.Duration
}

// PurchasingConfig tunes the purchase and catalogue services
type PurchasingConfig struct {
	CacheTTL           time.Duration
	ListCacheTTL       time.Duration
	EmployeeCacheTTL   time.Duration
	ExpiringWindowDays int
	JobRetention       time.Duration
}

// NotificationsConfig holds outbound email settings for stock alerts
type NotificationsConfig struct {
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	From       string
	Recipients []string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	TrustedProxies    []string
	SecureHeaders     bool
	RequestIDHeader   string
	UserIDHeader      string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string `required:"true"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	TLSEnabled      bool
	TLSCertFile     string
	TLSKeyFile      string
}

// defaults apply when neither the environment nor CONFIG_FILE sets a key.
// Environment dependent defaults are filled in by Load.
var defaults = map[string]any{
	"APP_NAME":    "backoffice-api",
	"APP_VERSION": "dev",
	"LOG_LEVEL":   "debug",
	"LOG_FORMAT":  "json",

	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "backoffice",
	"DB_PASSWORD":            "backoffice_dev",
	"DB_NAME":                "backoffice",
	"DB_SSL_MODE":            "disable",
	"DB_MAX_CONNECTIONS":     25,
	"DB_MIN_CONNECTIONS":     5,
	"DB_CONNECTION_LIFETIME": "1h",
	"DB_IDLE_TIME":           "30m",
	"DB_HEALTH_CHECK_PERIOD": "1m",
	"DB_CONNECT_TIMEOUT":     "10s",
	"DB_LOCK_TIMEOUT":        "5s",

	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              "6379",
	"REDIS_MAX_RETRIES":       3,
	"REDIS_MIN_RETRY_BACKOFF": "8ms",
	"REDIS_MAX_RETRY_BACKOFF": "512ms",
	"REDIS_DIAL_TIMEOUT":      "5s",
	"REDIS_READ_TIMEOUT":      "3s",
	"REDIS_WRITE_TIMEOUT":     "3s",
	"REDIS_POOL_SIZE":         10,
	"REDIS_MIN_IDLE_CONNS":    2,
	"REDIS_POOL_TIMEOUT":      "4s",
	"REDIS_TTL":               "1h",

	"ASYNQ_REDIS_DB":         1,
	"ASYNQ_CONCURRENCY":      10,
	"ASYNQ_QUEUES":           "critical:6,default:3,low:1",
	"ASYNQ_RETRY_MAX":        3,
	"ASYNQ_SHUTDOWN_TIMEOUT": "30s",
	"STOCK_AUDIT_CRON":       "0 3 * * *",
	"STOCK_ALERTS_CRON":      "0 7 * * *",
	"JOBS_CLEANUP_CRON":      "30 2 * * *",
	"DASHBOARD_REFRESH_CRON": "*/10 * * * *",

	"AWS_REGION":            "us-east-1",
	"AWS_ACCESS_KEY_ID":     "minioadmin",
	"AWS_SECRET_ACCESS_KEY": "minioadmin123",
	"AWS_S3_BUCKET":         "backoffice-files",

	"STORAGE_DRIVER":      "local",
	"STORAGE_LOCAL_DIR":   "./data/files",
	"STORAGE_PRESIGN_TTL": "15m",

	"PDF_MAX_SIZE_MB":    20,
	"EXCEL_MAX_SIZE_MB":  50,
	"PROCESSING_TIMEOUT": "5m",
	"TEMP_FILE_MAX_AGE":  "24h",

	"PURCHASE_CACHE_TTL":      "5m",
	"PURCHASE_LIST_CACHE_TTL": "1m",
	"EMPLOYEE_CACHE_TTL":      "30m",
	"EXPIRING_WINDOW_DAYS":    7,
	"JOB_RETENTION":           "168h",

	"SMTP_PORT": 587,
	"SMTP_FROM": "backoffice@localhost",

	"RATE_LIMIT_REQUESTS": 100,
	"RATE_LIMIT_DURATION": "1m",
	"ALLOWED_ORIGINS":     "*",
	"REQUEST_ID_HEADER":   "X-Request-ID",
	"USER_ID_HEADER":      "X-User-ID",

	"SERVER_HOST":             "0.0.0.0",
	"SERVER_PORT":             "8080",
	"SERVER_READ_TIMEOUT":     "15s",
	"SERVER_WRITE_TIMEOUT":    "30s",
	"SERVER_IDLE_TIMEOUT":     "60s",
	"SERVER_REQUEST_TIMEOUT":  "25s",
	"SERVER_MAX_HEADER_BYTES": 1 << 20,
	"SERVER_GRACEFUL_TIMEOUT": "30s",
}

// Load reads configuration from the environment, an optional CONFIG_FILE
// (any format viper understands, same upper case keys) and, in development,
// a .env file. Malformed values are errors, not silent defaults.
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" || env == "local" {
		// existing environment variables win over .env
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file loaded", slog.String("error", err.Error()))
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetDefault("APP_DEBUG", env == "development")
	v.SetDefault("AWS_S3_PATH_STYLE", env == "development")
	v.SetDefault("AWS_SECRET_NAME", "backoffice/"+env)
	v.SetDefault("SECURE_HEADERS", env == "production")
	v.SetDefault("TEMP_DIR", os.TempDir())

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
		logger.Info("config file loaded", slog.String("file", v.ConfigFileUsed()))
	}

	cfg, err := build(&reader{v: v}, env)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func build(r *reader, env string) (*Config, error) {
	redisHost, redisPort := r.str("REDIS_HOST"), r.str("REDIS_PORT")

	cfg := &Config{
		App: AppConfig{
			Name:        r.str("APP_NAME"),
			Environment: env,
			Version:     r.str("APP_VERSION"),
			LogLevel:    r.str("LOG_LEVEL"),
			LogFormat:   r.str("LOG_FORMAT"),
			Debug:       r.boolean("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:               r.str("DB_HOST"),
			Port:               r.str("DB_PORT"),
			User:               r.str("DB_USER"),
			Password:           r.str("DB_PASSWORD"),
			Name:               r.str("DB_NAME"),
			SSLMode:            r.str("DB_SSL_MODE"),
			MaxConnections:     int32(r.integer("DB_MAX_CONNECTIONS")),
			MinConnections:     int32(r.integer("DB_MIN_CONNECTIONS")),
			MaxConnLifetime:    r.duration("DB_CONNECTION_LIFETIME"),
			MaxConnIdleTime:    r.duration("DB_IDLE_TIME"),
			HealthCheckPeriod:  r.duration("DB_HEALTH_CHECK_PERIOD"),
			ConnectTimeout:     r.duration("DB_CONNECT_TIMEOUT"),
			LockTimeout:        r.duration("DB_LOCK_TIMEOUT"),
			EnableQueryLogging: r.boolean("DB_QUERY_LOGGING"),
			MigrationPath:      r.str("DB_MIGRATION_PATH"),
		},
		Redis: RedisConfig{
			Host:            redisHost,
			Port:            redisPort,
			Password:        r.str("REDIS_PASSWORD"),
			DB:              r.integer("REDIS_DB"),
			MaxRetries:      r.integer("REDIS_MAX_RETRIES"),
			MinRetryBackoff: r.duration("REDIS_MIN_RETRY_BACKOFF"),
			MaxRetryBackoff: r.duration("REDIS_MAX_RETRY_BACKOFF"),
			DialTimeout:     r.duration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:     r.duration("REDIS_READ_TIMEOUT"),
			WriteTimeout:    r.duration("REDIS_WRITE_TIMEOUT"),
			PoolSize:        r.integer("REDIS_POOL_SIZE"),
			MinIdleConns:    r.integer("REDIS_MIN_IDLE_CONNS"),
			PoolTimeout:     r.duration("REDIS_POOL_TIMEOUT"),
			TTL:             r.duration("REDIS_TTL"),
		},
		Asynq: AsynqConfig{
			RedisAddr:       net.JoinHostPort(redisHost, redisPort),
			RedisPassword:   r.str("REDIS_PASSWORD"),
			RedisDB:         r.integer("ASYNQ_REDIS_DB"),
			Concurrency:     r.integer("ASYNQ_CONCURRENCY"),
			Queues:          r.queues("ASYNQ_QUEUES"),
			StrictPriority:  r.boolean("ASYNQ_STRICT_PRIORITY"),
			RetryMax:        r.integer("ASYNQ_RETRY_MAX"),
			ShutdownTimeout: r.duration("ASYNQ_SHUTDOWN_TIMEOUT"),
			AuditCron:       r.str("STOCK_AUDIT_CRON"),
			AlertsCron:      r.str("STOCK_ALERTS_CRON"),
			CleanupCron:     r.str("JOBS_CLEANUP_CRON"),
			DashboardCron:   r.str("DASHBOARD_REFRESH_CRON"),
		},
		AWS: AWSConfig{
			Region:          r.str("AWS_REGION"),
			AccessKeyID:     r.str("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: r.str("AWS_SECRET_ACCESS_KEY"),
			S3Bucket:        r.str("AWS_S3_BUCKET"),
			S3Endpoint:      r.str("AWS_S3_ENDPOINT"),
			UsePathStyle:    r.boolean("AWS_S3_PATH_STYLE"),
			SecretsEnabled:  r.boolean("AWS_SECRETS_ENABLED"),
			SecretName:      r.str("AWS_SECRET_NAME"),
		},
		Storage: StorageConfig{
			Driver:     r.str("STORAGE_DRIVER"),
			LocalDir:   r.str("STORAGE_LOCAL_DIR"),
			PresignTTL: r.duration("STORAGE_PRESIGN_TTL"),
		},
		FileProcessing: FileProcessingConfig{
			PDFMaxSizeMB:      r.integer("PDF_MAX_SIZE_MB"),
			ExcelMaxSizeMB:    r.integer("EXCEL_MAX_SIZE_MB"),
			ProcessingTimeout: r.duration("PROCESSING_TIMEOUT"),
			TempDir:           r.str("TEMP_DIR"),
			TempFileMaxAge:    r.duration("TEMP_FILE_MAX_AGE"),
		},
		Purchasing: PurchasingConfig{
			CacheTTL:           r.duration("PURCHASE_CACHE_TTL"),
			ListCacheTTL:       r.duration("PURCHASE_LIST_CACHE_TTL"),
			EmployeeCacheTTL:   r.duration("EMPLOYEE_CACHE_TTL"),
			ExpiringWindowDays: r.integer("EXPIRING_WINDOW_DAYS"),
			JobRetention:       r.duration("JOB_RETENTION"),
		},
		Notifications: NotificationsConfig{
			SMTPHost:   r.str("SMTP_HOST"),
			SMTPPort:   r.integer("SMTP_PORT"),
			SMTPUser:   r.str("SMTP_USER"),
			SMTPPass:   r.str("SMTP_PASS"),
			From:       r.str("SMTP_FROM"),
			Recipients: r.list("ALERT_RECIPIENTS"),
		},
		Security: SecurityConfig{
			RateLimitRequests: r.integer("RATE_LIMIT_REQUESTS"),
			RateLimitDuration: r.duration("RATE_LIMIT_DURATION"),
			AllowedOrigins:    r.list("ALLOWED_ORIGINS"),
			TrustedProxies:    r.list("TRUSTED_PROXIES"),
			SecureHeaders:     r.boolean("SECURE_HEADERS"),
			RequestIDHeader:   r.str("REQUEST_ID_HEADER"),
			UserIDHeader:      r.str("USER_ID_HEADER"),
		},
		Server: ServerConfig{
			Host:            r.str("SERVER_HOST"),
			Port:            r.str("SERVER_PORT"),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     r.duration("SERVER_IDLE_TIMEOUT"),
			RequestTimeout:  r.duration("SERVER_REQUEST_TIMEOUT"),
			MaxHeaderBytes:  r.integer("SERVER_MAX_HEADER_BYTES"),
			GracefulTimeout: r.duration("SERVER_GRACEFUL_TIMEOUT"),
			TLSEnabled:      r.boolean("TLS_ENABLED"),
			TLSCertFile:     r.str("TLS_CERT_FILE"),
			TLSKeyFile:      r.str("TLS_KEY_FILE"),
		},
	}
	return cfg, errors.Join(r.errs...)
}

// Validate runs the basic validator, plus the production validator when
// running in production. All problems are reported together.
func (c *Config) Validate() error {
	validators := []interface{ Validate(*Config) error }{&BasicValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}

	var errs []error
	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetDatabaseURL returns the postgres URL used by migrations
func (c *Config) GetDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns host:port for the cache connection
func (c *Config) GetRedisAddress() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// reader pulls typed values out of viper and remembers every value that
// failed to parse so Load can report them together
type reader struct {
	v    *viper.Viper
	errs []error
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) fail(key, raw string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
}

func (r *reader) integer(key string) int {
	raw := r.str(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return n
}

func (r *reader) boolean(key string) bool {
	raw := r.str(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return b
}

func (r *reader) duration(key string) time.Duration {
	raw := r.str(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return d
}

// list splits a comma separated value, dropping blanks
func (r *reader) list(key string) []string {
	var out []string
	for _, p := range strings.Split(r.str(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// queues parses "name:weight,name:weight"
func (r *reader) queues(key string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range r.list(key) {
		name, weight, ok := strings.Cut(pair, ":")
		n, err := strconv.Atoi(strings.TrimSpace(weight))
		if !ok || err != nil || n <= 0 {
			r.fail(key, pair, errors.New("want name:positive-weight"))
			continue
		}
		queues[strings.TrimSpace(name)] = n
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
