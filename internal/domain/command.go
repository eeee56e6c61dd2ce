package domain

import "context"

// Platform identifies the chat platform an invocation came from
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformFeishu   Platform = "feishu"
)

// Invocation is one inbound command event
type Invocation struct {
	Platform  Platform
	ChatID    string
	MessageID string
	Text      string

	// RequestID, when set, becomes the ExecutionRequest ID and the reply's
	// idempotency key.
	RequestID string
}

// CommandBinding maps a platform command name to the language it executes.
// The help binding has an empty LanguageID.
type CommandBinding struct {
	Name       string
	LanguageID string
}

// IsHelp reports whether the binding is the generic help command
func (b CommandBinding) IsHelp() bool {
	return b.LanguageID == ""
}

// CommandHandler produces the single reply for an invocation
type CommandHandler func(ctx context.Context, inv Invocation) string

// Dispatcher routes invocations to command handlers
type Dispatcher interface {
	// Dispatch returns the reply and whether the text was a registered command
	Dispatch(ctx context.Context, inv Invocation) (string, bool)
}
