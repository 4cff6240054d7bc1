// config — источник загрузки конфигурации для бинарей campus-market
// (терминальный клиент и dev-стаб бекенда).
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
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	Client   ClientConfig  `yaml:"client"`
	Feed     FeedConfig    `yaml:"feed"`
	Stub     StubConfig    `yaml:"stub"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// ClientConfig — подключение к бекенду маркетплейса.
// Всё состояние клиента задаётся здесь явно; никаких ambient-значений в коде.
type ClientConfig struct {
	// BaseURL — адрес бекенда, например "http://localhost:50080".
	BaseURL string `yaml:"base_url" env:"CLIENT_BASE_URL" env-default:"http://localhost:50080"`
	// Schema — имя схемы кампуса (арендный идентификатор); уходит
	// query-параметром schema в каждый списочный запрос.
	Schema string `yaml:"schema" env:"CLIENT_SCHEMA" env-default:"campus_main"`
	// UserID — текущий пользователь; уходит заголовком X-User-Id.
	UserID string `yaml:"user_id" env:"CLIENT_USER_ID" env-default:"u-masha"`
	// UserAgent — подпись клиента в исходящих запросах.
	UserAgent string `yaml:"user_agent" env:"CLIENT_USER_AGENT" env-default:"campus-market-tui/1.0"`
}

// FeedConfig — размеры страниц лент.
type FeedConfig struct {
	// PageSize — объявления и беседы.
	PageSize int `yaml:"page_size" env:"FEED_PAGE_SIZE" env-default:"12"`
	// MessagePageSize — история сообщений беседы.
	MessagePageSize int `yaml:"message_page_size" env:"FEED_MESSAGE_PAGE_SIZE" env-default:"50"`
}

// TimeoutConfig — таймаут одного вызова к бекенду.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// StubConfig — dev-стаб бекенда.
type StubConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	// Schema — схема кампуса, которую обслуживает стаб.
	Schema string `yaml:"schema" env:"STUB_SCHEMA" env-default:"campus_main"`
	// Seed — наполнять ли хранилище демо-данными на старте.
	Seed bool `yaml:"seed" env:"STUB_SEED" env-default:"true"`
}

// HTTPConfig — HTTP-сервер стаба.
type HTTPConfig struct {
	Host string `yaml:"host" env:"STUB_HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"STUB_HTTP_PORT" env-default:"50080"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
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
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}
