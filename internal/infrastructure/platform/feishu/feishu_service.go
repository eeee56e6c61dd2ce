package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/pkg/logger"
)

// EventMessageReceive is the v2 event type for inbound messages
const EventMessageReceive = "im.message.receive_v1"

// FeishuService handles Feishu API integration
type FeishuService struct {
	config *config.FeishuConfig
	client *lark.Client
	log    logger.Logger
}

// NewFeishuService creates a new Feishu service
func NewFeishuService(cfg *config.FeishuConfig, httpClient *http.Client, log logger.Logger) *FeishuService {
	opts := []lark.ClientOptionFunc{}
	if httpClient != nil {
		opts = append(opts, lark.WithHttpClient(httpClient))
	}
	return &FeishuService{
		config: cfg,
		client: lark.NewClient(cfg.AppID, cfg.AppSecret, opts...),
		log:    log.With("feishu"),
	}
}

// ReplyMessage replies to a message as a quote in the same chat. uuid makes
// the request idempotent on the Feishu side.
func (s *FeishuService) ReplyMessage(ctx context.Context, messageID string, content string, uuid string) error {
	s.log.Debug("Will reply to message %s: %d bytes", messageID, len(content))

	textContent, err := TextContent(content)
	if err != nil {
		return err
	}

	req := larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			Content(textContent).
			MsgType("text").
			Uuid(uuid).
			ReplyInThread(false).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Reply(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to reply message: %w", err)
	}
	if !resp.Success() {
		s.log.Error("Reply error: code=%d, msg=%s", resp.Code, resp.Msg)
		return fmt.Errorf("failed to reply message: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	s.log.Debug("Successfully replied to message %s", messageID)
	return nil
}

// TextContent encodes text as the content of a "text" message
func TextContent(text string) (string, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal message content: %w", err)
	}
	return string(b), nil
}

var leadingMentionsRe = regexp.MustCompile(`^\s*(?:@_user_\d+\s*)+`)

// ParseTextContent decodes the content of a "text" message and removes the
// leading @_user_N placeholders Feishu puts where mentions were. The rest of
// the text is returned unchanged.
func ParseTextContent(content string) (string, error) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return "", fmt.Errorf("decode text content: %w", err)
	}
	return leadingMentionsRe.ReplaceAllString(body.Text, ""), nil
}
