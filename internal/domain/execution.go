package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyLanguageSet means there is nothing to route commands to
	ErrEmptyLanguageSet = errors.New("supported language set is empty")

	// ErrLanguageNotFound is reported by the execution service for unknown languages
	ErrLanguageNotFound = errors.New("language not found")

	// ErrMalformedResult means the execution service answered with an unexpected shape
	ErrMalformedResult = errors.New("malformed execution result")
)

// ExecutionRequest is created per inbound command and discarded after the reply
type ExecutionRequest struct {
	ID         string
	LanguageID string
	SourceCode string
	MessageID  string

	// Optional run inputs. Chat commands leave them empty.
	Input         string
	CompilerFlags []string
	Options       []string
	Args          []string
}

// ExecutionResult is what the execution service returns for a run
type ExecutionResult struct {
	Output          string
	ExitCode        int
	WallTimeSeconds float64
}

// ExecutionClient is the remote code-execution service
type ExecutionClient interface {
	// Languages enumerates the supported language identifiers
	Languages(ctx context.Context) ([]string, error)

	// Execute runs the request's source code
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// APIError is a non-2xx answer from the execution service
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Status)
}

// LanguageNotFoundError names the language the service rejected
type LanguageNotFoundError struct {
	Language string
}

func (e *LanguageNotFoundError) Error() string {
	return fmt.Sprintf("language %s not found", e.Language)
}

func (e *LanguageNotFoundError) Unwrap() error {
	return ErrLanguageNotFound
}
