package app

import (
	"context"
	"fmt"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/internal/usecase"
	"github.com/wyg1997/tino/pkg/logger"
)

// LanguageLoader provides the supported language set at startup
type LanguageLoader interface {
	Load(ctx context.Context) (domain.SupportedLanguageSet, error)
}

// App is built once before any transport accepts traffic and is read-only
// afterwards.
type App struct {
	Context    *usecase.AppContext
	Registry   *usecase.CommandRegistry
	Dispatcher *usecase.CommandDispatcher
	Executor   usecase.ExecuteUseCase
	Log        logger.Logger
}

// New loads the language set and builds the command registry. Any error is
// fatal: there is nothing to route without languages.
func New(ctx context.Context, loader LanguageLoader, client domain.ExecutionClient, log logger.Logger) (*App, error) {
	languages, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load supported languages: %w", err)
	}

	appCtx := &usecase.AppContext{
		Languages: languages,
		Client:    client,
		Log:       log,
	}

	registry, err := usecase.BuildCommandRegistry(appCtx)
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}
	for _, c := range registry.Collisions() {
		log.Warn("Command collision %s", c)
	}

	return &App{
		Context:    appCtx,
		Registry:   registry,
		Dispatcher: usecase.NewCommandDispatcher(registry, log),
		Executor:   usecase.NewExecuteUseCase(appCtx),
		Log:        log,
	}, nil
}
