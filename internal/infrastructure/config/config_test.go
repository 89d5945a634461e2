package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SHOP_APP_NAME":          os.Getenv("SHOP_APP_NAME"),
		"SHOP_APP_ENV":           os.Getenv("SHOP_APP_ENV"),
		"SHOP_APP_PORT":          os.Getenv("SHOP_APP_PORT"),
		"SHOP_DATABASE_HOST":     os.Getenv("SHOP_DATABASE_HOST"),
		"SHOP_DATABASE_PORT":     os.Getenv("SHOP_DATABASE_PORT"),
		"SHOP_DATABASE_USER":     os.Getenv("SHOP_DATABASE_USER"),
		"SHOP_DATABASE_PASSWORD": os.Getenv("SHOP_DATABASE_PASSWORD"),
		"SHOP_DATABASE_DBNAME":   os.Getenv("SHOP_DATABASE_DBNAME"),
		"SHOP_DATABASE_SSLMODE":  os.Getenv("SHOP_DATABASE_SSLMODE"),
		"SHOP_REDIS_HOST":        os.Getenv("SHOP_REDIS_HOST"),
		"SHOP_LOG_LEVEL":         os.Getenv("SHOP_LOG_LEVEL"),
		"SHOP_SYNC_CHUNK_SIZE":   os.Getenv("SHOP_SYNC_CHUNK_SIZE"),
		"SHOP_SYNC_CHUNK_BUDGET": os.Getenv("SHOP_SYNC_CHUNK_BUDGET"),

		"SHOP_TELEMETRY_LOGS_ENABLED": os.Getenv("SHOP_TELEMETRY_LOGS_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "shop", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, "info", cfg.Log.Level)

		assert.Equal(t, 100, cfg.Sync.ChunkSize)
		assert.Equal(t, 20, cfg.Sync.FlushEvery)
		assert.Equal(t, 25*time.Second, cfg.Sync.ChunkBudget)
		assert.Equal(t, 500*time.Millisecond, cfg.Sync.ChunkPause)
		assert.Equal(t, 30*time.Minute, cfg.Sync.RunLockTTL)
		assert.Equal(t, 20, cfg.Sync.RecentRuns)

		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, "shop-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.False(t, cfg.Telemetry.LogsEnabled)
		assert.Equal(t, "http://localhost:4040", cfg.Telemetry.ProfilingServerAddress)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_DATABASE_HOST", "db.internal")
		os.Setenv("SHOP_DATABASE_PASSWORD", "s3cret")
		os.Setenv("SHOP_SYNC_CHUNK_SIZE", "250")
		os.Setenv("SHOP_SYNC_CHUNK_BUDGET", "40s")
		os.Setenv("SHOP_LOG_LEVEL", "debug")
		os.Setenv("SHOP_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "s3cret", cfg.Database.Password)
		assert.Equal(t, 250, cfg.Sync.ChunkSize)
		assert.Equal(t, 40*time.Second, cfg.Sync.ChunkBudget)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		cfg.Database.Password = "secret"
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		cfg.Database.SSLMode = "require"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")

		cfg.HTTP.CORSAllowOrigins = []string{"https://shop.example.com"}
		assert.NoError(t, cfg.validate())
	})

	t.Run("flush_every cannot exceed chunk_size", func(t *testing.T) {
		cfg := base()
		cfg.Sync.ChunkSize = 10
		cfg.Sync.FlushEvery = 50

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush_every")

		cfg.Sync.FlushEvery = 5
		assert.NoError(t, cfg.validate())
	})

	t.Run("provider entries are checked", func(t *testing.T) {
		cfg := base()

		cfg.Providers = []ProviderConfig{{BaseURL: "https://api.example.com"}}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code is required")

		cfg.Providers = []ProviderConfig{
			{Code: "techsource", BaseURL: "https://api.example.com"},
			{Code: "techsource", BaseURL: "https://api.other.example.com"},
		}
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate provider code")

		cfg.Providers = []ProviderConfig{{Code: "techsource"}}
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_url is required")

		cfg.Providers = []ProviderConfig{{Code: "techsource", BaseURL: "https://api.example.com"}}
		assert.NoError(t, cfg.validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		cfg.Database.MaxOpenConns = 10

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "shop_user",
		Password: "p@ss/word#1",
		DBName:   "shop",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword%231")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
