package domain

import (
	"sort"
	"strings"
)

// SupportedLanguageSet is the immutable set of language identifiers the
// execution service accepts. It is loaded once at startup.
type SupportedLanguageSet struct {
	members map[string]struct{}
	sorted  []string
}

// NewSupportedLanguageSet builds a set from ids, dropping blanks and duplicates
func NewSupportedLanguageSet(ids []string) SupportedLanguageSet {
	members := make(map[string]struct{}, len(ids))
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := members[id]; dup {
			continue
		}
		members[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	return SupportedLanguageSet{members: members, sorted: sorted}
}

// Contains reports whether id is a supported language
func (s SupportedLanguageSet) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of languages
func (s SupportedLanguageSet) Len() int {
	return len(s.sorted)
}

// List returns the identifiers in ascending order
func (s SupportedLanguageSet) List() []string {
	out := make([]string, len(s.sorted))
	copy(out, s.sorted)
	return out
}
