package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "shopops-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, cfg.App.Name, cfg.Telemetry.ServiceName)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("idle conns above open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 100
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"

		assert.Error(t, cfg.validate())

		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.validate())

		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "shopops",
		Password: "p@ss/word",
		DBName:   "shopops",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	require.Containsf(t, dsn, "db.internal:5432", "dsn: %s", dsn)
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters must be escaped, not passed through.
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	r := &RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
