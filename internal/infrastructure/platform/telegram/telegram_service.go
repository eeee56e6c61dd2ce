package telegram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/pkg/logger"
)

const (
	// WebhookPathPrefix is where Telegram pushes updates in webhook mode
	WebhookPathPrefix = "/webhook/telegram/"

	// MaxMessageLength is the Bot API limit in UTF-16 code units
	MaxMessageLength = 4096
)

// TelegramService wraps the Bot API
type TelegramService struct {
	config *config.TelegramConfig
	bot    *tgbotapi.BotAPI
	log    logger.Logger

	stopOnce sync.Once
}

// NewTelegramService authenticates against the Bot API with the configured
// token. httpClient carries the proxy settings.
func NewTelegramService(cfg *config.TelegramConfig, httpClient *http.Client, log logger.Logger) (*TelegramService, error) {
	return newTelegramService(cfg, tgbotapi.APIEndpoint, httpClient, log)
}

func newTelegramService(cfg *config.TelegramConfig, endpoint string, httpClient *http.Client, log logger.Logger) (*TelegramService, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}

	s := &TelegramService{
		config: cfg,
		bot:    bot,
		log:    log.With("telegram"),
	}
	s.log.Info("Authorized on account @%s", bot.Self.UserName)
	return s, nil
}

// Username returns the bot's @username without the @
func (s *TelegramService) Username() string {
	return s.bot.Self.UserName
}

// ReplyMessage sends text to chatID as a quoted reply to messageID. The
// reply is still sent if that message was deleted in the meantime.
func (s *TelegramService) ReplyMessage(chatID int64, messageID int, text string) error {
	s.log.Debug("Will reply to message %d in chat %d: %d bytes", messageID, chatID, len(text))

	msg := tgbotapi.NewMessage(chatID, truncateMessage(text, MaxMessageLength))
	msg.ReplyToMessageID = messageID
	msg.AllowSendingWithoutReply = true
	msg.DisableNotification = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to reply message: %w", err)
	}

	s.log.Debug("Successfully replied to message %d", messageID)
	return nil
}

// SetCommands publishes the command menu. Language commands are left out:
// there are far more of them than the menu allows.
func (s *TelegramService) SetCommands(commands map[string]string) error {
	list := make([]tgbotapi.BotCommand, 0, len(commands))
	for name, description := range commands {
		list = append(list, tgbotapi.BotCommand{Command: name, Description: description})
	}

	if _, err := s.bot.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// WebhookPath is the secret path updates are pushed to. It is derived from
// the token so that only Telegram knows it.
func (s *TelegramService) WebhookPath() string {
	sum := sha256.Sum256([]byte(s.config.BotToken))
	return WebhookPathPrefix + hex.EncodeToString(sum[:16])
}

// SetWebhook points Telegram at baseURL + WebhookPath
func (s *TelegramService) SetWebhook(baseURL string) error {
	hookURL := strings.TrimSuffix(baseURL, "/") + s.WebhookPath()

	wh, err := tgbotapi.NewWebhook(hookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := s.bot.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	s.log.Info("Webhook set to %s%s", strings.TrimSuffix(baseURL, "/"), WebhookPathPrefix+"…")
	return nil
}

// ParseWebhook decodes an update pushed by Telegram
func (s *TelegramService) ParseWebhook(r *http.Request) (*tgbotapi.Update, error) {
	return s.bot.HandleUpdate(r)
}

// StartPolling removes any webhook and starts long polling. The channel is
// closed by StopPolling or when ctx is done.
func (s *TelegramService) StartPolling(ctx context.Context) (tgbotapi.UpdatesChannel, error) {
	if _, err := s.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return nil, fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		s.StopPolling()
	}()
	return updates, nil
}

// StopPolling stops long polling. It is safe to call more than once.
func (s *TelegramService) StopPolling() {
	s.stopOnce.Do(s.bot.StopReceivingUpdates)
}

// truncateMessage cuts text to at most limit UTF-16 code units, marking the
// cut with an ellipsis.
func truncateMessage(text string, limit int) string {
	units := 0
	for i, r := range text {
		n := 1
		if r >= 0x10000 {
			n = 2
		}
		if units+n > limit-1 {
			if utf16Len(text[i:]) <= limit-units {
				return text
			}
			return text[:i] + "…"
		}
		units += n
	}
	return text
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
