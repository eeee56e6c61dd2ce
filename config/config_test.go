package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, vars map[string]string) *Config {
	t.Helper()
	cfg, err := ParseConfig(env.Options{Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := parse(t, map[string]string{"TINO_TELEGRAM_BOT_TOKEN": "123:abc"})

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "443", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 64, cfg.Server.MaxConcurrentExecutions)
	assert.Equal(t, "https://tio.run/cgi-bin/run/api/", cfg.Tio.APIURL)
	assert.Equal(t, "https://tio.run/languages.json", cfg.Tio.LanguagesURL)
	assert.Equal(t, 60*time.Second, cfg.Tio.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, filepath.Join("./data", "languages.json"), cfg.Storage.LanguagesCacheFile())
	assert.Equal(t, "", cfg.Telegram.WebhookURL())
	assert.False(t, cfg.Feishu.IsConfigured())
	assert.NoError(t, cfg.IsValid())
}

func TestConfig_MissingTokenIsFatal(t *testing.T) {
	cfg := parse(t, map[string]string{})

	err := cfg.IsValid()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "telegram", cfgErr.Field)
	assert.Contains(t, err.Error(), "TINO_TELEGRAM_BOT_TOKEN")
}

func TestConfig_WebhookURL(t *testing.T) {
	cfg := parse(t, map[string]string{
		"TINO_TELEGRAM_BOT_TOKEN": "t",
		"HOST":                    "https://legacy.example.com",
	})
	assert.Equal(t, "https://legacy.example.com", cfg.Telegram.WebhookURL())

	cfg = parse(t, map[string]string{
		"TINO_TELEGRAM_BOT_TOKEN":          "t",
		"HOST":                             "https://legacy.example.com",
		"TINO_TELEGRAM_BOT_WEBHOOK_LISTEN": "https://bot.example.com",
		"PORT":                             "8443",
	})
	assert.Equal(t, "https://bot.example.com", cfg.Telegram.WebhookURL())
	assert.Equal(t, "8443", cfg.Server.Port)
	assert.NoError(t, cfg.IsValid())
}

func TestConfig_InvalidWebhook(t *testing.T) {
	cfg := parse(t, map[string]string{
		"TINO_TELEGRAM_BOT_TOKEN":          "t",
		"TINO_TELEGRAM_BOT_WEBHOOK_LISTEN": "bot.example.com",
	})
	assert.Error(t, cfg.IsValid())
}

func TestConfig_FeishuHalfConfigured(t *testing.T) {
	cfg := parse(t, map[string]string{
		"TINO_TELEGRAM_BOT_TOKEN": "t",
		"FEISHU_APP_ID":           "cli_x",
	})
	assert.Error(t, cfg.IsValid())

	cfg.Feishu.AppSecret = "secret"
	assert.NoError(t, cfg.IsValid())
	assert.True(t, cfg.Feishu.IsConfigured())
}

func TestParseConfig_BadDuration(t *testing.T) {
	_, err := ParseConfig(env.Options{Environment: map[string]string{"TIO_TIMEOUT": "soon"}})
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TINO_TEST_ONLY_VAR=from-file\n"), 0o644))
	t.Setenv("TINO_TEST_ONLY_VAR", "")
	os.Unsetenv("TINO_TEST_ONLY_VAR")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("TINO_TEST_ONLY_VAR"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestConfig_ZeroConcurrency(t *testing.T) {
	cfg := parse(t, map[string]string{
		"TINO_TELEGRAM_BOT_TOKEN":   "123:abc",
		"MAX_CONCURRENT_EXECUTIONS": "0",
	})

	var cfgErr *ConfigError
	require.ErrorAs(t, cfg.IsValid(), &cfgErr)
	assert.Equal(t, "server", cfgErr.Field)
}
