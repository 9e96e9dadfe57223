package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every LSEED_ variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lseed-ledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "lseed", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Redis.ReceiptTTL)
		assert.Equal(t, "imports", cfg.Archive.Prefix)
		assert.Equal(t, 30*time.Second, cfg.Ingestion.LockTimeout)
		assert.True(t, cfg.Ingestion.DefaultOpeningCash.IsZero())
		assert.Equal(t, "lseed-ledger", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with LSEED prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_APP_NAME", "test-app")
		t.Setenv("LSEED_APP_PORT", "9000")
		t.Setenv("LSEED_DATABASE_HOST", "testdb.local")
		t.Setenv("LSEED_DATABASE_PORT", "5433")
		t.Setenv("LSEED_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("LSEED_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("LSEED_REDIS_ENABLED", "true")
		t.Setenv("LSEED_REDIS_RECEIPT_TTL", "2h")
		t.Setenv("LSEED_INGESTION_DEFAULT_OPENING_CASH", "1500.50")
		t.Setenv("LSEED_INGESTION_LOCK_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 2*time.Hour, cfg.Redis.ReceiptTTL)
		assert.Equal(t, "1500.5", cfg.Ingestion.DefaultOpeningCash.String())
		assert.Equal(t, 5*time.Second, cfg.Ingestion.LockTimeout)
	})

	t.Run("rejects a malformed opening cash", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_INGESTION_DEFAULT_OPENING_CASH", "lots")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ingestion.default_opening_cash")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LSEED_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("requires a bucket when archive is enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_ARCHIVE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "archive.bucket")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LSEED_APP_ENV", "production")
		t.Setenv("LSEED_DATABASE_PASSWORD", "secure-password")
		t.Setenv("LSEED_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("LSEED_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LSEED_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects full SQL tracing in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LSEED_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("requires a profiler address when profiling", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LSEED_TELEMETRY_PROFILER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profiler_address")

		t.Setenv("LSEED_TELEMETRY_PROFILER_ADDRESS", "http://pyroscope:4040")
		t.Setenv("LSEED_TELEMETRY_SPAN_PROFILES", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.ProfilerEnabled)
		assert.True(t, cfg.Telemetry.SpanProfiles)
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
