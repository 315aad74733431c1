// internal/pkg/config/secrets_test.go
package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/test/helpers"
)

type fakeSecrets struct {
	value string
	err   error
	calls int
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: aws.String(f.value)}, nil
}

func TestAWSSecretsManager(t *testing.T) {
	ctx := context.Background()

	t.Run("applies_credentials_and_caches", func(t *testing.T) {
		client := &fakeSecrets{value: `{"DB_PASSWORD":"pg-secret","REDIS_PASSWORD":"redis-secret"}`}
		sm := config.NewAWSSecretsManagerWithClient(client, "backoffice/prod", time.Hour, helpers.TestLogger())

		cfg := helpers.LoadTestConfig()
		cfg.Notifications.SMTPPass = "from-env"
		require.NoError(t, config.ApplySecrets(ctx, cfg, sm))

		assert.Equal(t, "pg-secret", cfg.Database.Password)
		assert.Equal(t, "redis-secret", cfg.Redis.Password)
		assert.Equal(t, "redis-secret", cfg.Asynq.RedisPassword)
		assert.Equal(t, "from-env", cfg.Notifications.SMTPPass)

		val, err := sm.GetSecret(ctx, config.SecretDBPassword)
		require.NoError(t, err)
		assert.Equal(t, "pg-secret", val)
		assert.Equal(t, 1, client.calls)

		require.NoError(t, sm.RefreshSecrets(ctx))
		assert.Equal(t, 2, client.calls)
	})

	t.Run("missing_key", func(t *testing.T) {
		sm := config.NewAWSSecretsManagerWithClient(&fakeSecrets{value: `{}`}, "backoffice/prod", time.Hour, helpers.TestLogger())

		_, err := sm.GetSecret(ctx, config.SecretSMTPPass)
		assert.ErrorContains(t, err, "SMTP_PASS")
	})

	t.Run("malformed_secret", func(t *testing.T) {
		sm := config.NewAWSSecretsManagerWithClient(&fakeSecrets{value: `not json`}, "backoffice/prod", time.Hour, helpers.TestLogger())

		_, err := sm.GetSecrets(ctx, []string{config.SecretDBPassword})
		assert.ErrorContains(t, err, "not a JSON object")
	})

	t.Run("client_error_is_wrapped", func(t *testing.T) {
		boom := errors.New("AccessDeniedException")
		sm := config.NewAWSSecretsManagerWithClient(&fakeSecrets{err: boom}, "backoffice/prod", time.Hour, helpers.TestLogger())

		err := config.ApplySecrets(ctx, helpers.LoadTestConfig(), sm)
		assert.ErrorIs(t, err, boom)
	})
}

func TestEnvSecretsManager(t *testing.T) {
	t.Setenv(config.SecretDBPassword, "env-pass")
	t.Setenv(config.SecretRedisPassword, "")

	sm := config.NewEnvSecretsManager()
	got, err := sm.GetSecrets(context.Background(), []string{config.SecretDBPassword, config.SecretRedisPassword})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{config.SecretDBPassword: "env-pass"}, got)

	_, err = sm.GetSecret(context.Background(), config.SecretRedisPassword)
	assert.Error(t, err)
}
