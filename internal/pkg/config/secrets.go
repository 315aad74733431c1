// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager resolves secret values by key
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
	RefreshSecrets(ctx context.Context) error
}

// Secret keys that may override values loaded from the environment
const (
	SecretDBPassword    = "DB_PASSWORD"
	SecretRedisPassword = "REDIS_PASSWORD"
	SecretSMTPPass      = "SMTP_PASS"
)

// ApplySecrets overrides credentials in cfg with whatever the manager holds.
// Keys missing from the manager keep their environment value.
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretsManager) error {
	secrets, err := sm.GetSecrets(ctx, []string{SecretDBPassword, SecretRedisPassword, SecretSMTPPass})
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if v, ok := secrets[SecretDBPassword]; ok && v != "" {
		cfg.Database.Password = v
	}
	if v, ok := secrets[SecretRedisPassword]; ok && v != "" {
		cfg.Redis.Password = v
		cfg.Asynq.RedisPassword = v
	}
	if v, ok := secrets[SecretSMTPPass]; ok && v != "" {
		cfg.Notifications.SMTPPass = v
	}
	return nil
}

// NewSecretsManager picks AWS Secrets Manager when enabled, the environment otherwise
func NewSecretsManager(ctx context.Context, cfg *Config, logger *slog.Logger) (SecretsManager, error) {
	if !cfg.AWS.SecretsEnabled {
		return NewEnvSecretsManager(), nil
	}
	return NewAWSSecretsManager(ctx, cfg.AWS.Region, cfg.AWS.SecretName, logger)
}

// SecretValueGetter is the part of the Secrets Manager client the backoffice
// uses
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads one JSON secret holding every credential the
// backoffice needs and keeps it for a short while
type AWSSecretsManager struct {
	client     SecretValueGetter
	secretName string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	values    map[string]string
	fetchedAt time.Time
}

// NewAWSSecretsManager loads the default AWS credential chain for region
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	if secretName == "" {
		return nil, fmt.Errorf("%w: aws secret name", ErrMissingRequiredConfig)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSSecretsManagerWithClient(secretsmanager.NewFromConfig(awsCfg), secretName, 5*time.Minute, logger), nil
}

// NewAWSSecretsManagerWithClient builds a manager over an existing client
func NewAWSSecretsManagerWithClient(client SecretValueGetter, secretName string, ttl time.Duration, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		client:     client,
		secretName: secretName,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "secrets")),
	}
}

// GetSecret returns one key of the secret
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	values, err := sm.load(ctx, false)
	if err != nil {
		return "", err
	}
	val, ok := values[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found in %s", key, sm.secretName)
	}
	return val, nil
}

// GetSecrets returns the requested keys that the secret holds. Absent keys
// are left out of the result.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	values, err := sm.load(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := values[key]; ok {
			out[key] = val
			continue
		}
		sm.logger.DebugContext(ctx, "secret key not present", slog.String("key", key))
	}
	return out, nil
}

// RefreshSecrets fetches the secret again regardless of its age
func (sm *AWSSecretsManager) RefreshSecrets(ctx context.Context) error {
	_, err := sm.load(ctx, true)
	return err
}

// load serializes fetches so concurrent callers share one round trip
func (sm *AWSSecretsManager) load(ctx context.Context, force bool) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !force && sm.values != nil && sm.now().Sub(sm.fetchedAt) < sm.ttl {
		return sm.values, nil
	}

	sm.logger.InfoContext(ctx, "fetching secrets", slog.String("secret_name", sm.secretName))

	out, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", sm.secretName, err)
	}

	var raw []byte
	switch {
	case out.SecretString != nil:
		raw = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		raw = out.SecretBinary
	default:
		return nil, fmt.Errorf("secret %s has no value", sm.secretName)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object of strings: %w", sm.secretName, err)
	}

	sm.values = values
	sm.fetchedAt = sm.now()
	return values, nil
}

// EnvSecretsManager reads secrets from the process environment, which is
// where they live in development and in the compose setup
type EnvSecretsManager struct {
	lookup func(string) (string, bool)
}

// NewEnvSecretsManager reads from os.LookupEnv
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{lookup: os.LookupEnv}
}

// GetSecret returns the variable named key
func (em *EnvSecretsManager) GetSecret(_ context.Context, key string) (string, error) {
	if val, ok := em.lookup(key); ok && val != "" {
		return val, nil
	}
	return "", fmt.Errorf("environment variable %s not set", key)
}

// GetSecrets returns the non-empty variables among keys
func (em *EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := em.lookup(key); ok && val != "" {
			out[key] = val
		}
	}
	return out, nil
}

// RefreshSecrets does nothing; the environment is read on every call
func (em *EnvSecretsManager) RefreshSecrets(context.Context) error { return nil }
