package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/internal/app"
	"github.com/wyg1997/tino/internal/infrastructure/network"
	"github.com/wyg1997/tino/internal/infrastructure/repository"
	"github.com/wyg1997/tino/internal/infrastructure/tio"
	"github.com/wyg1997/tino/pkg/cache"
	"github.com/wyg1997/tino/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "tino",
	Short: "Chat bot that runs code on tio.run",
	Long: `tino forwards /tio<lang> <code> commands from chat to tio.run and
replies with the program output.

Without a subcommand the bot is started, same as "tino serve".

Examples:
  tino                          # start the bot
  tino languages                # list languages and their commands
  tino run python3 hello.py     # run a file through tio.run`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL or info)")
	addServeFlags(rootCmd)
}

// loadConfig reads .env and the environment and applies the global flags
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Storage.LogLevel = logLevel
	}

	logger.SetLogLevel(cfg.Storage.LogLevel)
	return cfg, logger.GetLogger(), nil
}

// newTioClient builds the execution service client with proxy and timeout
func newTioClient(cfg *config.Config, log logger.Logger) (*tio.Client, error) {
	httpClient, err := network.NewHTTPClient(cfg.Telegram.SocksProxy, cfg.Tio.Timeout)
	if err != nil {
		return nil, fmt.Errorf("create tio.run HTTP client: %w", err)
	}
	return tio.NewClient(&cfg.Tio, httpClient, log), nil
}

// bootstrap builds the application context: language set, registry and
// request handler. The returned cache must be closed by the caller.
func bootstrap(ctx context.Context, cfg *config.Config, client *tio.Client, log logger.Logger) (*app.App, cache.Cache, error) {
	if dir := cfg.Storage.DataDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	c, err := cache.NewFileCache(cfg.Storage.LanguagesCacheFile(), cfg.Cache.CleanUpIntvl)
	if err != nil {
		return nil, nil, fmt.Errorf("open language cache: %w", err)
	}

	repo := repository.NewLanguageRepository(client, c, cfg.Cache.TTL, cfg.Cache.Retention, log)
	a, err := app.New(ctx, repo, client, log)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return a, c, nil
}
