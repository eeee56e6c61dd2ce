package usecase

import (
	"context"
	"strings"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/logger"
)

// CommandDispatcher implements domain.Dispatcher on top of a CommandRegistry
type CommandDispatcher struct {
	registry *CommandRegistry
	botName  string
	logger   logger.Logger
}

// NewCommandDispatcher creates a dispatcher that accepts commands addressed
// to any bot
func NewCommandDispatcher(registry *CommandRegistry, log logger.Logger) *CommandDispatcher {
	return &CommandDispatcher{
		registry: registry,
		logger:   log.With("dispatch"),
	}
}

// WithBotName returns a dispatcher that ignores "/cmd@other_bot" commands
func (d *CommandDispatcher) WithBotName(name string) *CommandDispatcher {
	clone := *d
	clone.botName = name
	return &clone
}

func (d *CommandDispatcher) Dispatch(ctx context.Context, inv domain.Invocation) (string, bool) {
	token, _ := ParseCommand(inv.Text)
	if !strings.HasPrefix(token, "/") {
		return "", false
	}

	name, mention := SplitMention(strings.TrimPrefix(token, "/"))
	if mention != "" && d.botName != "" && !strings.EqualFold(mention, d.botName) {
		return "", false
	}

	name = strings.ToLower(name)
	handler, ok := d.registry.Lookup(name)
	if !ok {
		return "", false
	}

	d.logger.Info("Triggered /%s from %s chat %s", name, inv.Platform, inv.ChatID)
	return handler(ctx, inv), true
}
