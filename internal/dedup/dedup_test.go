package dedup

import (
	"strings"
	"testing"

	"github.com/disinfowatch/propextract/internal/ledger"
)

func existing() []ledger.Entry {
	return []ledger.Entry{
		{
			Title:        "Encirclement op-ed",
			SourceURL:    "https://example.org/encirclement",
			OriginalText: "Russia is surrounded by enemies on all sides, the article begins, before listing a long series of grievances going back decades.",
		},
	}
}

func TestMatchesURL(t *testing.T) {
	if !LooksLikeDuplicate(existing(), "completely different text", "different title", "https://example.org/encirclement") {
		t.Error("identical URL should flag a duplicate even with different title and text")
	}
}

func TestMatchesTitle(t *testing.T) {
	if !LooksLikeDuplicate(existing(), "different text", "Encirclement op-ed", "https://example.org/other") {
		t.Error("identical title should flag a duplicate")
	}
}

func TestMatchesTextPrefix(t *testing.T) {
	// Same leading text with case drift and a different tail.
	text := strings.ToUpper(existing()[0].OriginalText) + " with an entirely different continuation"
	if !LooksLikeDuplicate(existing(), text, "New title", "https://example.org/new") {
		t.Error("matching first 100 characters should flag a duplicate")
	}
}

func TestNoMatch(t *testing.T) {
	if LooksLikeDuplicate(existing(), "an entirely unrelated article about tractors", "Tractor news", "https://example.org/tractors") {
		t.Error("unrelated article flagged as duplicate")
	}
}

func TestEmptyFieldsDoNotMatch(t *testing.T) {
	entries := []ledger.Entry{{Title: "", SourceURL: "", OriginalText: ""}}
	if LooksLikeDuplicate(entries, "some text", "", "") {
		t.Error("empty URL and title must not match empty existing fields")
	}
}

func TestEmptyLedger(t *testing.T) {
	if LooksLikeDuplicate(nil, "text", "title", "url") {
		t.Error("empty ledger can have no duplicates")
	}
}

func TestPrefixIgnoresTailDifferences(t *testing.T) {
	base := strings.Repeat("x", 100)
	entries := []ledger.Entry{{OriginalText: base + " original tail"}}
	if !LooksLikeDuplicate(entries, base+" different tail", "", "") {
		t.Error("differences past the first 100 characters should not matter")
	}
}
