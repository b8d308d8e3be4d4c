// config - источник загрузки конфигурации для shop-client.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые хранилища сессии.
const (
	StoreMemory = "memory"
	StoreDisk   = "disk"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig     `yaml:"api"`
	Session  SessionConfig `yaml:"session"`
	Retry    RetryConfig   `yaml:"retry"`
	HTTP     HTTPConfig    `yaml:"http"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// APIConfig - REST-бэкенд, к которому ходит клиент.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000/api"`
	Timeout   time.Duration `yaml:"timeout"    env:"API_TIMEOUT"    env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"shop-client"`
}

// SessionConfig - где и как хранится пара токенов.
// Dir пустой - используется $HOME/.shop-client.
type SessionConfig struct {
	Store            string        `yaml:"store"              env:"SESSION_STORE"              env-default:"disk"`
	Dir              string        `yaml:"dir"                env:"SESSION_DIR"`
	RedisURL         string        `yaml:"redis_url"          env:"SESSION_REDIS_URL"          env-default:"redis://localhost:6379/0"`
	RedisPrefix      string        `yaml:"redis_prefix"       env:"SESSION_REDIS_PREFIX"       env-default:"shop:session:"`
	RedisTTL         time.Duration `yaml:"redis_ttl"          env:"SESSION_REDIS_TTL"          env-default:"24h"`
	SQLitePath       string        `yaml:"sqlite_path"        env:"SESSION_SQLITE_PATH"`
	EvictOnRejection bool          `yaml:"evict_on_rejection" env:"SESSION_EVICT_ON_REJECTION" env-default:"false"`
}

// StateDir возвращает каталог локального состояния.
func (s SessionConfig) StateDir() string {
	if s.Dir != "" {
		return s.Dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".shop-client"
	}

	return filepath.Join(home, ".shop-client")
}

// SQLiteFile возвращает путь к файлу sqlite-хранилища.
func (s SessionConfig) SQLiteFile() string {
	if s.SQLitePath != "" {
		return s.SQLitePath
	}

	return filepath.Join(s.StateDir(), "session.db")
}

// RetryConfig - политика повторов. MaxAttempts=1 означает "без повторов".
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"    env:"RETRY_MAX_ATTEMPTS"    env-default:"1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"RETRY_INITIAL_BACKOFF" env-default:"200ms"`
	MaxBackoff     time.Duration `yaml:"max_backoff"     env:"RETRY_MAX_BACKOFF"     env-default:"2s"`
}

// HTTPConfig - локальный шлюз (команда serve).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// TimeoutConfig - общий дедлайн входящего запроса к шлюзу.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
}

// Validate проверяет значения, которые cleanenv проверить не может.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreDisk, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("empty api base url")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}

	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
