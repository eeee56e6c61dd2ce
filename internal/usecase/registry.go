package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/wyg1997/tino/internal/domain"
)

// Collision records a language whose command name was already taken
type Collision struct {
	Name    string
	Kept    string
	Dropped string
}

// CommandRegistry maps command names to handlers. It is immutable after
// BuildCommandRegistry returns.
type CommandRegistry struct {
	bindings   map[string]domain.CommandBinding
	handlers   map[string]domain.CommandHandler
	collisions []Collision
}

// BuildCommandRegistry binds the help command and one command per supported
// language. Languages are registered in sorted order and the first one to
// claim a command name keeps it.
func BuildCommandRegistry(app *AppContext) (*CommandRegistry, error) {
	if app.Languages.Len() == 0 {
		return nil, domain.ErrEmptyLanguageSet
	}

	log := app.Log.With("registry")
	exec := NewExecuteUseCase(app)

	r := &CommandRegistry{
		bindings: make(map[string]domain.CommandBinding, app.Languages.Len()+1),
		handlers: make(map[string]domain.CommandHandler, app.Languages.Len()+1),
	}

	r.bindings[HelpCommand] = domain.CommandBinding{Name: HelpCommand}
	r.handlers[HelpCommand] = func(context.Context, domain.Invocation) string {
		return UsageText
	}

	for _, lang := range app.Languages.List() {
		name := DeriveCommandName(lang)
		if existing, taken := r.bindings[name]; taken {
			c := Collision{Name: name, Kept: existing.LanguageID, Dropped: lang}
			r.collisions = append(r.collisions, c)
			log.Warn("Command /%s already bound to %q, skipping %q", name, c.Kept, c.Dropped)
			continue
		}

		languageID := lang
		r.bindings[name] = domain.CommandBinding{Name: name, LanguageID: languageID}
		r.handlers[name] = func(ctx context.Context, inv domain.Invocation) string {
			return exec.Handle(ctx, languageID, inv)
		}
	}

	log.Info("Registered %d commands for %d languages (%d collisions)", len(r.bindings), app.Languages.Len(), len(r.collisions))
	return r, nil
}

// Lookup returns the handler bound to a command name
func (r *CommandRegistry) Lookup(name string) (domain.CommandHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Binding returns the binding for a command name
func (r *CommandRegistry) Binding(name string) (domain.CommandBinding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}

// Bindings returns all bindings sorted by command name
func (r *CommandRegistry) Bindings() []domain.CommandBinding {
	out := make([]domain.CommandBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Collisions returns languages that could not be bound
func (r *CommandRegistry) Collisions() []Collision {
	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// Len returns the number of bound commands, help included
func (r *CommandRegistry) Len() int {
	return len(r.bindings)
}

func (c Collision) String() string {
	kept := c.Kept
	if kept == "" {
		kept = "help"
	}
	return fmt.Sprintf("/%s: kept %s, dropped %s", c.Name, kept, c.Dropped)
}
