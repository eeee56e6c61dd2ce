package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// CommandPrefix is prepended to every language command
	CommandPrefix = "tio"
	// HelpCommand shows usage regardless of arguments
	HelpCommand = "tio"
)

// DeriveCommandName maps a language identifier to a platform command name.
// Platforms only accept [a-z0-9_] in command names, so the identifier is
// lowercased, diacritics are folded and everything else (hyphens in
// practice) is dropped: "c-gcc" becomes "tiocgcc".
func DeriveCommandName(languageID string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		languageID,
	)
	if err != nil {
		folded = languageID
	}

	var b strings.Builder
	b.Grow(len(CommandPrefix) + len(folded))
	b.WriteString(CommandPrefix)
	for _, r := range strings.ToLower(folded) {
		if isCommandRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCommandRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

// ParseCommand splits text at the first whitespace run. The remainder is
// returned verbatim so multi-line and indentation-sensitive code survives.
func ParseCommand(text string) (token, remainder string) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimLeftFunc(text[idx:], unicode.IsSpace)
}

// SplitMention splits "tiopython3@tino_bot" into the command and bot name
func SplitMention(command string) (name, mention string) {
	if i := strings.IndexByte(command, '@'); i >= 0 {
		return command[:i], command[i+1:]
	}
	return command, ""
}
