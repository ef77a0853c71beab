package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "tx_propagation", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "REQUIRED", cfg.Tx.DefaultPropagation)
	assert.Equal(t, 10*time.Second, cfg.Tx.SignupLockTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Tx.LogRetention)
	assert.Equal(t, time.Hour, cfg.Tx.LogCleanupInterval)
}

func TestLoad_FromEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("DB_NAME", "txdb")
	os.Setenv("REDIS_DB", "3")
	os.Setenv("TX_DEFAULT_PROPAGATION", "REQUIRES_NEW")
	os.Setenv("TX_SIGNUP_LOCK_TTL", "30s")
	os.Setenv("LOG_RETENTION", "168h")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "txdb", cfg.Database.DBName)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "REQUIRES_NEW", cfg.Tx.DefaultPropagation)
	assert.Equal(t, 30*time.Second, cfg.Tx.SignupLockTTL)
	assert.Equal(t, 168*time.Hour, cfg.Tx.LogRetention)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("REDIS_DB", "not-a-number")
	os.Setenv("TX_SIGNUP_LOCK_TTL", "not-a-duration")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Tx.SignupLockTTL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: "5432",
		User: "postgres", Password: "secret",
		DBName: "tx_propagation", SSLMode: "disable",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=tx_propagation")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: "6379"}
	assert.Equal(t, "localhost:6379", cfg.Addr())
}
