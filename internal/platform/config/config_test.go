package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "America/New_York", cfg.AppTimezone)
	assert.Equal(t, 45, cfg.Policy.LoginLateMinutes)
	assert.Equal(t, 30, cfg.Policy.AutoClockoutMinute)
	assert.Equal(t, 0.6, cfg.Face.AcceptDistance)
	assert.Equal(t, 5, cfg.Face.MaxDescriptors)
	assert.Equal(t, time.Minute, cfg.Reconciler.Interval)
	assert.Equal(t, ModeAllTenants, cfg.Reconciler.Mode)
	assert.NotEmpty(t, cfg.JWTSigningKey, "dev signing key should be filled in")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "America/Chicago")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("RECONCILE_MODE", ModeTenant)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "America/Chicago", cfg.AppTimezone)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.Interval)
	assert.Equal(t, ModeTenant, cfg.Reconciler.Mode)
}

func TestFromEnvRejects(t *testing.T) {
	t.Run("unknown reconcile mode", func(t *testing.T) {
		t.Setenv("RECONCILE_MODE", "sometimes")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("production without signing key", func(t *testing.T) {
		t.Setenv("STOREOPS_ENV", "production")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("RECONCILE_INTERVAL", "soon")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
