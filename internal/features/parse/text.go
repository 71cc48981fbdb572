package parse

import "strings"

var transliterate = strings.NewReplacer(
	"ä", "a", "ö", "o", "å", "a",
	"Ä", "A", "Ö", "O", "Å", "A",
)

// Sanitize transliterates Scandinavian vowels and strips everything outside
// ASCII letters, digits, space, hyphen, period and colon.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	s = transliterate.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isKeptRune(r) {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

func isKeptRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '.', r == ':':
		return true
	}
	return false
}
