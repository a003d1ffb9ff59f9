package diagram

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CamelCase normalizes a status or action name into the identifier used for
// nodes, edge endpoints and edge labels: lowercase, split on spaces and
// underscores, capitalize each word, join without separator.
// "in review" -> "InReview", "IN_PROGRESS" -> "InProgress".
func CamelCase(s string) string {
	words := strings.Split(strings.ReplaceAll(strings.ToLower(s), " ", "_"), "_")

	var b strings.Builder
	b.Grow(len(s))
	for _, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}
