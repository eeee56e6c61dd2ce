package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/internal/infrastructure/network"
	"github.com/wyg1997/tino/internal/infrastructure/platform/feishu"
	"github.com/wyg1997/tino/internal/infrastructure/platform/telegram"
	"github.com/wyg1997/tino/internal/interfaces/http/handler"
	"github.com/wyg1997/tino/internal/usecase"
)

// telegramHTTPTimeout must exceed the long polling timeout
const telegramHTTPTimeout = 90 * time.Second

var (
	serveToken   string
	serveWebhook string
	servePort    string
	serveProxy   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot",
	Long: `Starts the Telegram bot and, when FEISHU_APP_ID and FEISHU_APP_SECRET are
set, the Feishu webhook.

Telegram uses long polling unless a webhook URL is given, in which case
the HTTP server on --port receives the updates.

Examples:
  tino serve
  tino serve --webhook https://bot.example.com --port 8443`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serveToken, "token", "", "Telegram bot token (default: TINO_TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringVar(&serveWebhook, "webhook", "", "public webhook base URL (default: TINO_TELEGRAM_BOT_WEBHOOK_LISTEN)")
	cmd.Flags().StringVar(&servePort, "port", "", "HTTP listen port (default: PORT or 443)")
	cmd.Flags().StringVar(&serveProxy, "proxy", "", "proxy URL, socks5:// or http:// (default: SOCKS_PROXY)")
}

func applyServeFlags(cfg *config.Config) {
	if serveToken != "" {
		cfg.Telegram.BotToken = serveToken
	}
	if serveWebhook != "" {
		cfg.Telegram.WebhookListen = serveWebhook
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveProxy != "" {
		cfg.Telegram.SocksProxy = serveProxy
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)
	if err := cfg.IsValid(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info("Starting tino...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tioClient, err := newTioClient(cfg, log)
	if err != nil {
		return err
	}
	a, langCache, err := bootstrap(ctx, cfg, tioClient, log)
	if err != nil {
		return err
	}
	defer langCache.Close()

	// Telegram
	tgHTTP, err := network.NewHTTPClient(cfg.Telegram.SocksProxy, telegramHTTPTimeout)
	if err != nil {
		return fmt.Errorf("create telegram HTTP client: %w", err)
	}
	tgService, err := telegram.NewTelegramService(&cfg.Telegram, tgHTTP, log)
	if err != nil {
		return err
	}
	if err := tgService.SetCommands(map[string]string{usecase.HelpCommand: "Show usage"}); err != nil {
		log.Warn("Failed to publish command menu: %v", err)
	}
	pool := workerpool.New(cfg.Server.MaxConcurrentExecutions)

	tgHandler := handler.NewTelegramHandler(ctx, tgService, a.Dispatcher.WithBotName(tgService.Username()), pool, log)

	router := mux.NewRouter()
	router.HandleFunc("/health", handler.Health(a.Registry.Len())).Methods(http.MethodGet)

	pollDone := make(chan struct{})
	webhookURL := cfg.Telegram.WebhookURL()
	if webhookURL != "" {
		close(pollDone)
		router.HandleFunc(tgService.WebhookPath(), tgHandler.Webhook).Methods(http.MethodPost)
		if err := tgService.SetWebhook(webhookURL); err != nil {
			return err
		}
	} else {
		updates, err := tgService.StartPolling(ctx)
		if err != nil {
			return err
		}
		log.Info("Polling Telegram for updates")
		go func() {
			defer close(pollDone)
			tgHandler.Poll(updates)
		}()
	}

	// Feishu
	if cfg.Feishu.IsConfigured() {
		fsService := feishu.NewFeishuService(&cfg.Feishu, nil, log)
		fsHandler := handler.NewFeishuHandler(ctx, &cfg.Feishu, fsService, a.Dispatcher, pool, log)
		router.HandleFunc("/webhook/feishu", fsHandler.Webhook).Methods(http.MethodPost)
		log.Info("Feishu webhook enabled at /webhook/feishu")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("start server: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	tgService.StopPolling()

	// In-flight executions get the same grace period as the HTTP server.
	// The pool only stops once nothing can submit to it any more.
	done := make(chan struct{})
	go func() {
		<-pollDone
		pool.StopWait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("Abandoning in-flight executions")
	}
	cancel()

	log.Info("Server exited")
	return nil
}
