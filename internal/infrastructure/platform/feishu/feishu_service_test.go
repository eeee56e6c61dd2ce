package feishu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextContent(t *testing.T) {
	got, err := TextContent("a \"quoted\"\nline")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"a \"quoted\"\nline"}`, got)
}

func TestParseTextContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", `{"text":"/tiopython3 print(1)"}`, "/tiopython3 print(1)"},
		{"leading mention", `{"text":"@_user_1 /tiobash echo hi"}`, "/tiobash echo hi"},
		{"several mentions", `{"text":"@_user_1 @_user_12 /tio"}`, "/tio"},
		{"multiline code kept", `{"text":"@_user_1 /tiopython3 a = 1\nprint(a)"}`, "/tiopython3 a = 1\nprint(a)"},
		{"trailing whitespace kept", `{"text":"/tiopython3 print('x')\n    \n"}`, "/tiopython3 print('x')\n    \n"},
		{"placeholder inside code kept", `{"text":"@_user_1 /tiobash echo '@_user_2   spaced'"}`, "/tiobash echo '@_user_2   spaced'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTextContent(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTextContent_RoundTrip(t *testing.T) {
	code := "/tiopython3 print('x')\n    \n"
	content, err := TextContent(code)
	require.NoError(t, err)

	got, err := ParseTextContent(content)
	require.NoError(t, err)
	assert.Equal(t, code, got)
}

func TestParseTextContent_Invalid(t *testing.T) {
	_, err := ParseTextContent("not json")
	assert.Error(t, err)
}
