package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/logger"
)

type staticLoader struct {
	set domain.SupportedLanguageSet
	err error
}

func (l staticLoader) Load(context.Context) (domain.SupportedLanguageSet, error) {
	return l.set, l.err
}

func TestNew(t *testing.T) {
	client := &domain.MockExecutionClient{}
	client.On("Execute", mock.Anything, mock.Anything).
		Return(&domain.ExecutionResult{Output: "ok", WallTimeSeconds: 0.5}, nil)

	a, err := New(context.Background(), staticLoader{set: domain.NewSupportedLanguageSet([]string{"python3", "c-gcc"})}, client, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, 3, a.Registry.Len())
	assert.True(t, a.Context.Languages.Contains("c-gcc"))

	reply, ok := a.Dispatcher.Dispatch(context.Background(), domain.Invocation{Text: "/tiocgcc main(){}"})
	assert.True(t, ok)
	assert.Equal(t, "ok[exit(0) in 0.5s]", reply)

	assert.Equal(t, "ok[exit(0) in 0.5s]", a.Executor.Run(context.Background(), domain.ExecutionRequest{LanguageID: "python3", SourceCode: "1"}))
}

func TestNew_LoaderFailureIsFatal(t *testing.T) {
	_, err := New(context.Background(), staticLoader{err: errors.New("offline")}, &domain.MockExecutionClient{}, logger.Discard())
	assert.ErrorContains(t, err, "offline")
}

func TestNew_EmptySetIsFatal(t *testing.T) {
	_, err := New(context.Background(), staticLoader{}, &domain.MockExecutionClient{}, logger.Discard())
	assert.ErrorIs(t, err, domain.ErrEmptyLanguageSet)
}
