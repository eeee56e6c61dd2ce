package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/logger"
)

// AppContext is the process-lifetime state shared by the registry builder
// and the request handler. It is read-only once constructed.
type AppContext struct {
	Languages domain.SupportedLanguageSet
	Client    domain.ExecutionClient
	Log       logger.Logger
}

// ExecuteUseCase defines the request handling for language commands
type ExecuteUseCase interface {
	// Handle parses an invocation bound to languageID and returns its reply
	Handle(ctx context.Context, languageID string, inv domain.Invocation) string

	// Run executes req and returns the reply. An empty req.ID is filled in.
	Run(ctx context.Context, req domain.ExecutionRequest) string
}

// ExecuteUseCaseImpl implements ExecuteUseCase
type ExecuteUseCaseImpl struct {
	app    *AppContext
	logger logger.Logger
	newID  func() string
}

// NewExecuteUseCase creates a new execute use case
func NewExecuteUseCase(app *AppContext) ExecuteUseCase {
	return &ExecuteUseCaseImpl{
		app:    app,
		logger: app.Log.With("execute"),
		newID:  uuid.NewString,
	}
}

// Handle runs the per-invocation state machine. It always returns exactly
// one reply.
func (u *ExecuteUseCaseImpl) Handle(ctx context.Context, languageID string, inv domain.Invocation) string {
	_, code := ParseCommand(inv.Text)
	if code == "" {
		u.logger.Debug("No code given for %s in message %s", languageID, inv.MessageID)
		return UsageText
	}
	return u.Run(ctx, domain.ExecutionRequest{
		ID:         inv.RequestID,
		LanguageID: languageID,
		SourceCode: code,
		MessageID:  inv.MessageID,
	})
}

// Run validates req, sends it to the execution client and formats the
// outcome. Missing code or a language that is no longer supported gets the
// usage text.
func (u *ExecuteUseCaseImpl) Run(ctx context.Context, req domain.ExecutionRequest) string {
	if req.SourceCode == "" {
		return UsageText
	}
	if !u.app.Languages.Contains(req.LanguageID) {
		u.logger.Warn("Language %q is not supported any more", req.LanguageID)
		return UsageText
	}

	if req.ID == "" {
		req.ID = u.newID()
	}
	u.logger.Info("Executing request %s: lang=%s, message_id=%s, code_bytes=%d", req.ID, req.LanguageID, req.MessageID, len(req.SourceCode))

	result := u.execute(ctx, req)
	if result.IsError() {
		u.logger.Error("Request %s failed: %v", req.ID, result.Error())
		return FormatFailure(result.Error())
	}

	res := result.MustGet()
	u.logger.Info("Request %s finished: exit=%d, real_time=%gs", req.ID, res.ExitCode, res.WallTimeSeconds)
	return FormatResult(res)
}

// execute is the boundary to the execution client: every outcome, panics
// included, comes back as a Result.
func (u *ExecuteUseCaseImpl) execute(ctx context.Context, req domain.ExecutionRequest) (result mo.Result[domain.ExecutionResult]) {
	defer func() {
		if r := recover(); r != nil {
			result = mo.Err[domain.ExecutionResult](fmt.Errorf("execution client panicked: %v", r))
		}
	}()

	res, err := u.app.Client.Execute(ctx, req)
	if err != nil {
		return mo.Err[domain.ExecutionResult](err)
	}
	if res == nil {
		return mo.Err[domain.ExecutionResult](domain.ErrMalformedResult)
	}
	return mo.Ok(*res)
}
