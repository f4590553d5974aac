// Package dedup flags probable duplicate submissions before an article is
// sent off for analysis. Detection is advisory: the caller decides whether to
// proceed, nothing here blocks processing.
package dedup

import (
	"strings"

	"github.com/disinfowatch/propextract/internal/ledger"
)

// prefixLen is how much of the original text is compared. A full-text match
// would miss copy-paste whitespace drift; the first hundred characters catch
// the same article pasted twice.
const prefixLen = 100

// LooksLikeDuplicate reports whether the candidate article matches any
// existing entry on source URL, title, or the leading text prefix. URL and
// title matches require a non-empty candidate value.
func LooksLikeDuplicate(entries []ledger.Entry, originalText, title, sourceURL string) bool {
	for _, e := range entries {
		if sourceURL != "" && e.SourceURL == sourceURL {
			return true
		}
		if title != "" && e.Title == title {
			return true
		}
		if originalText != "" && e.OriginalText != "" &&
			textPrefix(originalText) == textPrefix(e.OriginalText) {
			return true
		}
	}
	return false
}

func textPrefix(s string) string {
	r := []rune(s)
	if len(r) > prefixLen {
		r = r[:prefixLen]
	}
	return strings.ToLower(strings.TrimSpace(string(r)))
}
