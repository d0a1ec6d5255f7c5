package anchor

import (
	"strings"
	"unicode"
)

// normalizeName folds the spellings Anchor accepts for one program or
// method (ExampleCpi, exampleCpi, example_cpi, example-cpi) to one key.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// snakeCase converts camelCase or kebab-case to snake_case. Names that are
// already snake_case are returned unchanged.
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && runes[i-1] != '-' {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameProgramName reports whether a and b are spellings of the same
// workspace name, e.g. "ExampleCpi" and "example_cpi".
func SameProgramName(a, b string) bool { return normalizeName(a) == normalizeName(b) }
