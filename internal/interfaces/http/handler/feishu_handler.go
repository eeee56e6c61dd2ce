package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"

	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/internal/infrastructure/platform/feishu"
	"github.com/wyg1997/tino/pkg/logger"
)

// FeishuReplier is the part of the Feishu service the handler needs
type FeishuReplier interface {
	ReplyMessage(ctx context.Context, messageID string, content string, uuid string) error
}

// FeishuHandler processes Feishu event callbacks
type FeishuHandler struct {
	ctx        context.Context
	config     *config.FeishuConfig
	replier    FeishuReplier
	dispatcher domain.Dispatcher
	logger     logger.Logger
	pool       *workerpool.WorkerPool
}

// NewFeishuHandler creates handler
func NewFeishuHandler(ctx context.Context, cfg *config.FeishuConfig, replier FeishuReplier, dispatcher domain.Dispatcher, pool *workerpool.WorkerPool, log logger.Logger) *FeishuHandler {
	return &FeishuHandler{
		ctx:        ctx,
		config:     cfg,
		replier:    replier,
		dispatcher: dispatcher,
		pool:       pool,
		logger:     log.With("feishu-handler"),
	}
}

// Webhook processes Feishu webhook
func (h *FeishuHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Received Feishu webhook %s %s", r.Method, r.URL.Path)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("read body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("json unmarshal: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.logger.Debug("Payload: %s", string(body))

	if _, ok := payload["encrypt"]; ok {
		h.logger.Error("Encrypted events are not supported, disable the encrypt key in the Feishu console")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	header := getMap(payload, "header")

	// URL verification carries the token at the top level, events in the header
	token := getString(payload, "token")
	if header != nil {
		token = getString(header, "token")
	}
	if h.config.Verification != "" && token != h.config.Verification {
		h.logger.Warn("Rejected callback with invalid verification token")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if challenge := payload["challenge"]; challenge != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": fmt.Sprintf("%v", challenge)})
		return
	}

	if header == nil || getString(header, "event_type") != feishu.EventMessageReceive {
		h.logger.Debug("Ignoring event type %q", getString(header, "event_type"))
		writeSuccess(w)
		return
	}

	message := getMap(getMap(payload, "event"), "message")
	if message == nil || getString(message, "message_type") != "text" {
		writeSuccess(w)
		return
	}

	messageID := getString(message, "message_id")
	text, err := feishu.ParseTextContent(getString(message, "content"))
	if err != nil || messageID == "" || text == "" {
		h.logger.Debug("Skipping message %q: %v", messageID, err)
		writeSuccess(w)
		return
	}

	inv := domain.Invocation{
		Platform:  domain.PlatformFeishu,
		ChatID:    getString(message, "chat_id"),
		MessageID: messageID,
		Text:      text,
		RequestID: uuid.NewString(),
	}

	h.pool.Submit(func() {
		h.processMessage(inv)
	})

	writeSuccess(w)
}

func (h *FeishuHandler) processMessage(inv domain.Invocation) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling message %s: %v", inv.MessageID, r)
		}
	}()

	reply, ok := h.dispatcher.Dispatch(h.ctx, inv)
	if !ok {
		return
	}

	if err := h.replier.ReplyMessage(h.ctx, inv.MessageID, reply, inv.RequestID); err != nil {
		h.logger.Error("reply to message %s: %v", inv.MessageID, err)
	}
}

func writeSuccess(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success"))
}

func getString(m map[string]interface{}, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	v, ok := m[key].(map[string]interface{})
	if !ok {
		return nil
	}
	return v
}
