package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gammazero/workerpool"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"

	"github.com/wyg1997/tino/internal/domain"
)

func newTestPool(t *testing.T) *workerpool.WorkerPool {
	pool := workerpool.New(4)
	t.Cleanup(pool.Stop)
	return pool
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, inv domain.Invocation) (string, bool) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Bool(1)
}

type mockTelegramBot struct {
	mock.Mock
}

func (m *mockTelegramBot) ReplyMessage(chatID int64, messageID int, text string) error {
	return m.Called(chatID, messageID, text).Error(0)
}

func (m *mockTelegramBot) ParseWebhook(r *http.Request) (*tgbotapi.Update, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tgbotapi.Update), args.Error(1)
}

type mockFeishuReplier struct {
	mock.Mock
}

func (m *mockFeishuReplier) ReplyMessage(ctx context.Context, messageID string, content string, uuid string) error {
	return m.Called(ctx, messageID, content, uuid).Error(0)
}
