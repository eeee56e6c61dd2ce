package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gammazero/workerpool"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/logger"
)

// TelegramBot is the part of the Telegram service the handler needs
type TelegramBot interface {
	ReplyMessage(chatID int64, messageID int, text string) error
	ParseWebhook(r *http.Request) (*tgbotapi.Update, error)
}

// TelegramHandler turns Telegram updates into invocations and sends the
// replies back.
type TelegramHandler struct {
	ctx        context.Context
	bot        TelegramBot
	dispatcher domain.Dispatcher
	logger     logger.Logger
	pool       *workerpool.WorkerPool
}

// NewTelegramHandler creates handler. ctx bounds every execution it starts;
// executions run on pool.
func NewTelegramHandler(ctx context.Context, bot TelegramBot, dispatcher domain.Dispatcher, pool *workerpool.WorkerPool, log logger.Logger) *TelegramHandler {
	return &TelegramHandler{
		ctx:        ctx,
		bot:        bot,
		dispatcher: dispatcher,
		pool:       pool,
		logger:     log.With("telegram-handler"),
	}
}

// Poll handles updates until the channel is closed
func (h *TelegramHandler) Poll(updates <-chan tgbotapi.Update) {
	for update := range updates {
		h.HandleUpdate(update)
	}
	h.logger.Info("Update channel closed")
}

// Webhook processes an update pushed by Telegram. The response does not wait
// for the execution.
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	update, err := h.bot.ParseWebhook(r)
	if err != nil {
		h.logger.Error("parse update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.HandleUpdate(*update)
	w.WriteHeader(http.StatusOK)
}

// HandleUpdate queues one update on the worker pool
func (h *TelegramHandler) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	inv := domain.Invocation{
		Platform:  domain.PlatformTelegram,
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: strconv.Itoa(msg.MessageID),
		Text:      msg.Text,
	}

	h.pool.Submit(func() {
		h.processMessage(msg.Chat.ID, msg.MessageID, inv)
	})
}

func (h *TelegramHandler) processMessage(chatID int64, messageID int, inv domain.Invocation) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling message %d in chat %d: %v", messageID, chatID, r)
		}
	}()

	reply, ok := h.dispatcher.Dispatch(h.ctx, inv)
	if !ok {
		return
	}

	if err := h.bot.ReplyMessage(chatID, messageID, reply); err != nil {
		h.logger.Error("reply to message %d in chat %d: %v", messageID, chatID, err)
	}
}
