package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wyg1997/tino/internal/domain"
)

func TestBuildCommandRegistry_EmptySetIsFatal(t *testing.T) {
	_, err := BuildCommandRegistry(newTestApp(&domain.MockExecutionClient{}))
	assert.ErrorIs(t, err, domain.ErrEmptyLanguageSet)
}

func TestBuildCommandRegistry_BindsEveryLanguage(t *testing.T) {
	reg, err := BuildCommandRegistry(newTestApp(&domain.MockExecutionClient{}, "python3", "c-gcc", "bash"))
	require.NoError(t, err)

	assert.Equal(t, 4, reg.Len())
	assert.Equal(t, []domain.CommandBinding{
		{Name: "tio"},
		{Name: "tiobash", LanguageID: "bash"},
		{Name: "tiocgcc", LanguageID: "c-gcc"},
		{Name: "tiopython3", LanguageID: "python3"},
	}, reg.Bindings())
	assert.Empty(t, reg.Collisions())

	_, ok := reg.Lookup("tioc-gcc")
	assert.False(t, ok)
}

func TestBuildCommandRegistry_HyphenatedLanguageDispatchesOriginalID(t *testing.T) {
	client := &domain.MockExecutionClient{}
	client.On("Execute", mock.Anything, requestFor("c-gcc", "int main(){}")).
		Return(&domain.ExecutionResult{WallTimeSeconds: 0.3}, nil).
		Once()

	reg, err := BuildCommandRegistry(newTestApp(client, "c-gcc"))
	require.NoError(t, err)

	binding, ok := reg.Binding("tiocgcc")
	require.True(t, ok)
	assert.Equal(t, "c-gcc", binding.LanguageID)

	handler, ok := reg.Lookup("tiocgcc")
	require.True(t, ok)
	assert.Equal(t, "[exit(0) in 0.3s]", handler(context.Background(), invocation("/tiocgcc int main(){}")))
	client.AssertExpectations(t)
}

func TestBuildCommandRegistry_HelpIgnoresArguments(t *testing.T) {
	client := &domain.MockExecutionClient{}
	reg, err := BuildCommandRegistry(newTestApp(client, "python3"))
	require.NoError(t, err)

	help, ok := reg.Lookup(HelpCommand)
	require.True(t, ok)
	for _, text := range []string{"/tio", "/tio python3", "/tio\nanything at all"} {
		assert.Equal(t, UsageText, help(context.Background(), invocation(text)))
	}
	client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestBuildCommandRegistry_FirstRegistrationWins(t *testing.T) {
	client := &domain.MockExecutionClient{}
	client.On("Execute", mock.Anything, requestFor("a-b", "x")).
		Return(&domain.ExecutionResult{}, nil).
		Once()

	reg, err := BuildCommandRegistry(newTestApp(client, "ab", "a-b", "a_b"))
	require.NoError(t, err)

	// Sorted order is "a-b", "a_b", "ab"; "a-b" and "ab" both derive tioab.
	binding, ok := reg.Binding("tioab")
	require.True(t, ok)
	assert.Equal(t, "a-b", binding.LanguageID)

	binding, ok = reg.Binding("tioa_b")
	require.True(t, ok)
	assert.Equal(t, "a_b", binding.LanguageID)

	assert.Equal(t, []Collision{{Name: "tioab", Kept: "a-b", Dropped: "ab"}}, reg.Collisions())

	handler, _ := reg.Lookup("tioab")
	handler(context.Background(), invocation("/tioab x"))
	client.AssertExpectations(t)
}

func TestBuildCommandRegistry_HelpCannotBeShadowed(t *testing.T) {
	reg, err := BuildCommandRegistry(newTestApp(&domain.MockExecutionClient{}, "-", "python3"))
	require.NoError(t, err)

	binding, ok := reg.Binding(HelpCommand)
	require.True(t, ok)
	assert.True(t, binding.IsHelp())

	collisions := reg.Collisions()
	require.Len(t, collisions, 1)
	assert.Equal(t, "/tio: kept help, dropped -", collisions[0].String())
}

func TestBuildCommandRegistry_EveryNameIsValid(t *testing.T) {
	langs := []string{"python3", "c-gcc", "Ada (GNAT)", "brainfuck", "05ab1e", "java-openjdk", "ñ"}
	reg, err := BuildCommandRegistry(newTestApp(&domain.MockExecutionClient{}, langs...))
	require.NoError(t, err)

	for _, b := range reg.Bindings() {
		assert.Regexp(t, validCommand, b.Name)
	}
}
