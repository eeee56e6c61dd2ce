package config

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server configuration
	Server ServerConfig

	// Platform configurations
	Telegram TelegramConfig
	Feishu   FeishuConfig

	// Execution service configuration
	Tio TioConfig

	// Storage configuration
	Storage StorageConfig

	// Cache configuration
	Cache CacheConfig
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"443"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	// Upper bound on executions in flight across all platforms
	MaxConcurrentExecutions int `env:"MAX_CONCURRENT_EXECUTIONS" envDefault:"64"`
}

type TelegramConfig struct {
	BotToken string `env:"TINO_TELEGRAM_BOT_TOKEN"`
	// Public base URL of the webhook; empty selects long polling
	WebhookListen string `env:"TINO_TELEGRAM_BOT_WEBHOOK_LISTEN"`
	// Legacy name for WebhookListen
	Host       string `env:"HOST"`
	SocksProxy string `env:"SOCKS_PROXY"`
}

// WebhookURL returns the webhook base URL, or "" in polling mode
func (c TelegramConfig) WebhookURL() string {
	if c.WebhookListen != "" {
		return c.WebhookListen
	}
	return c.Host
}

type FeishuConfig struct {
	AppID        string `env:"FEISHU_APP_ID"`
	AppSecret    string `env:"FEISHU_APP_SECRET"`
	Verification string `env:"FEISHU_VERIFICATION_TOKEN"` // 可选的验证 token
}

// IsConfigured reports whether the Feishu transport should be started
func (c FeishuConfig) IsConfigured() bool {
	return c.AppID != "" && c.AppSecret != ""
}

type TioConfig struct {
	APIURL       string        `env:"TIO_API_URL" envDefault:"https://tio.run/cgi-bin/run/api/"`
	LanguagesURL string        `env:"TIO_LANGUAGES_URL" envDefault:"https://tio.run/languages.json"`
	Timeout      time.Duration `env:"TIO_TIMEOUT" envDefault:"60s"`
}

type StorageConfig struct {
	DataDir  string `env:"DATA_DIR" envDefault:"./data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LanguagesCacheFile is where the language list is persisted
func (c StorageConfig) LanguagesCacheFile() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "languages.json")
}

type CacheConfig struct {
	TTL          time.Duration `env:"LANGUAGES_CACHE_TTL" envDefault:"24h"`
	Retention    time.Duration `env:"LANGUAGES_CACHE_RETENTION" envDefault:"168h"`
	CleanUpIntvl time.Duration `env:"CACHE_CLEANUP" envDefault:"5m"`
}

// LoadConfig loads configuration from the .env file and environment variables
func LoadConfig() (*Config, error) {
	if err := LoadDefaultEnvFile(); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	return ParseConfig(env.Options{})
}

// ParseConfig parses configuration with explicit env options
func ParseConfig(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsValid checks if the configuration is valid
func (c *Config) IsValid() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "telegram", Message: "`TINO_TELEGRAM_BOT_TOKEN` is missing"}
	}
	if hook := c.Telegram.WebhookURL(); hook != "" {
		u, err := url.Parse(hook)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "telegram", Message: fmt.Sprintf("invalid webhook URL %q", hook)}
		}
	}
	if proxy := c.Telegram.SocksProxy; proxy != "" {
		if _, err := url.Parse(proxy); err != nil {
			return &ConfigError{Field: "telegram", Message: fmt.Sprintf("invalid proxy URL %q", proxy)}
		}
	}
	if c.Server.MaxConcurrentExecutions < 1 {
		return &ConfigError{Field: "server", Message: "MAX_CONCURRENT_EXECUTIONS must be at least 1"}
	}
	if (c.Feishu.AppID == "") != (c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "feishu", Message: "Feishu AppID and AppSecret must be set together"}
	}
	if c.Tio.APIURL == "" || c.Tio.LanguagesURL == "" {
		return &ConfigError{Field: "tio", Message: "API and languages URLs are required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
