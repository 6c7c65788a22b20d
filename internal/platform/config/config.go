package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"
)

type Server struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR"`
	TLS             bool          `yaml:"tls" env:"SERVER_TLS"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Username string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
}

// Redis: Addr が空なら冪等キャッシュは無効
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type Logger struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // text | json
}

type Attendance struct {
	DefaultTimeZone string        `yaml:"default_timezone" env:"ATTENDANCE_DEFAULT_TZ"`
	HistoryLimit    int           `yaml:"history_limit" env:"ATTENDANCE_HISTORY_LIMIT"`
	IdempotencyTTL  time.Duration `yaml:"idempotency_ttl" env:"ATTENDANCE_IDEMPOTENCY_TTL"`
}

type Certs struct {
	Cert string `yaml:"cert" env:"TLS_CERT"`
	Key  string `yaml:"key" env:"TLS_KEY"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode" env:"APP_MODE"`
	Server      Server         `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Redis       Redis          `yaml:"redis"`
	Auth        Auth           `yaml:"auth"`
	Logger      Logger         `yaml:"logger"`
	Attendance  Attendance     `yaml:"attendance"`
	Certificate Certs          `yaml:"certificate"`
}

func (c *Config) IsDevelopment() bool { return c.Mode == ModeDev }

// LoadConfig: YAML → .env → 環境変数 の順で上書きする
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env の読み込み失敗: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("環境変数のパース失敗: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Attendance.DefaultTimeZone == "" {
		c.Attendance.DefaultTimeZone = "UTC"
	}
	if c.Attendance.HistoryLimit <= 0 {
		c.Attendance.HistoryLimit = 30
	}
	if c.Attendance.IdempotencyTTL <= 0 {
		c.Attendance.IdempotencyTTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if _, err := time.LoadLocation(c.Attendance.DefaultTimeZone); err != nil {
		return fmt.Errorf("attendance.default_timezone: %w", err)
	}
	return nil
}
