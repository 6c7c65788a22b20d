package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("yaml values with defaults", func(t *testing.T) {
		path := writeConfig(t, `
mode: release
database:
  host: db.internal
  port: 3306
  user: app
  dbname: hrm
auth:
  jwt_secret: s3cret
attendance:
  default_timezone: Asia/Tokyo
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, ModeRelease, cfg.Mode)
		assert.Equal(t, "db.internal", cfg.DB.Host)
		assert.Equal(t, ":8443", cfg.Server.Addr)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "Asia/Tokyo", cfg.Attendance.DefaultTimeZone)
		assert.Equal(t, 30, cfg.Attendance.HistoryLimit)
		assert.Equal(t, 24*time.Hour, cfg.Attendance.IdempotencyTTL)
		assert.False(t, cfg.IsDevelopment())
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		path := writeConfig(t, `
mode: dev
database:
  host: 127.0.0.1
auth:
  jwt_secret: from-yaml
`)
		t.Setenv("DB_HOST", "mysql")
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("ATTENDANCE_IDEMPOTENCY_TTL", "1h")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "mysql", cfg.DB.Host)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
		assert.Equal(t, time.Hour, cfg.Attendance.IdempotencyTTL)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		path := writeConfig(t, "mode: staging\nauth:\n  jwt_secret: x\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("requires jwt secret", func(t *testing.T) {
		path := writeConfig(t, "mode: dev\n")
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "jwt_secret")
	})

	t.Run("rejects invalid timezone", func(t *testing.T) {
		path := writeConfig(t, "auth:\n  jwt_secret: x\nattendance:\n  default_timezone: Mars/Olympus\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
