package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("SESSION_SECRET", "")

	cfg := LoadConfig()

	assert.Equal(t, 3004, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Empty(t, cfg.RedisAddr())
	assert.False(t, cfg.GoogleEnabled())
	assert.Empty(t, cfg.SessionSecret, "no built-in signing key")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/todo.db")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/todo.db", cfg.DBPath)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.GoogleEnabled())
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: 5432, DBUser: "u", DBPassword: "p", DBName: "todo", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=todo sslmode=disable", cfg.PostgresDSN())
}
