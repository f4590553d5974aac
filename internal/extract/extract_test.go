package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/disinfowatch/propextract/internal/ledger"
	"github.com/disinfowatch/propextract/internal/repair"
)

// stubProvider returns a canned response or error and records the prompt.
type stubProvider struct {
	response string
	err      error
	prompt   string
}

func (s *stubProvider) Analyze(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func testArticle() Article {
	return Article{
		Title:          "Encirclement op-ed",
		SourceURL:      "https://example.org/encirclement",
		SourceLanguage: "russian",
		OriginalText:   "Мы окружены врагами",
		HumanAnalysis:  "Standard encirclement framing.",
	}
}

func TestSubmitAppendsEntry(t *testing.T) {
	provider := &stubProvider{response: "Here you go:\n```json\n" +
		`{"translation": "We are surrounded", "primary_narrative": "ENCIRCLEMENT_NARRATIVE", "techniques": ["Victim_Blaming"], "scores": {"russian_alignment": 5, "sophistication": 2, "effectiveness": 3}}` +
		"\n```"}
	col := ledger.New()
	e := New(provider, col)

	entry, err := e.Submit(context.Background(), testArticle())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if entry.ID != 1 {
		t.Errorf("ID = %d, want 1", entry.ID)
	}
	if entry.Timestamp == "" {
		t.Error("Timestamp not assigned")
	}
	if entry.Analysis.PrimaryNarrative != "ENCIRCLEMENT_NARRATIVE" {
		t.Errorf("PrimaryNarrative = %q", entry.Analysis.PrimaryNarrative)
	}
	if entry.Analysis.Scores.RussianAlignment != 5 {
		t.Errorf("RussianAlignment = %v", entry.Analysis.Scores.RussianAlignment)
	}
	if len(col.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(col.Entries))
	}
}

func TestSubmitPromptContents(t *testing.T) {
	provider := &stubProvider{response: "{}"}
	e := New(provider, ledger.New())
	if _, err := e.Submit(context.Background(), testArticle()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	for _, want := range []string{
		"Мы окружены врагами",
		"Standard encirclement framing.",
		"ORIGINAL SOURCE TEXT (russian):",
		"primary_narrative",
		"ENCIRCLEMENT_NARRATIVE",
	} {
		if !strings.Contains(provider.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSubmitBackendFailureAppendsNothing(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	col := ledger.New()
	e := New(provider, col)

	if _, err := e.Submit(context.Background(), testArticle()); err == nil {
		t.Fatal("expected error")
	}
	if len(col.Entries) != 0 {
		t.Errorf("entry appended despite backend failure: %d", len(col.Entries))
	}
}

func TestSubmitUnparseableResponseAppendsNothing(t *testing.T) {
	provider := &stubProvider{response: "I cannot produce JSON today."}
	col := ledger.New()
	e := New(provider, col)

	_, err := e.Submit(context.Background(), testArticle())
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *repair.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *repair.FormatError, got %T", err)
	}
	if fe.Raw != "I cannot produce JSON today." {
		t.Errorf("Raw = %q", fe.Raw)
	}
	if len(col.Entries) != 0 {
		t.Errorf("entry appended despite unparseable response: %d", len(col.Entries))
	}
}

func TestSubmitDuplicateURL(t *testing.T) {
	provider := &stubProvider{response: "{}"}
	col := ledger.New()
	e := New(provider, col)

	if _, err := e.Submit(context.Background(), testArticle()); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	second := Article{Title: "Different title", SourceURL: "https://example.org/encirclement", OriginalText: "different text"}
	if !e.CheckDuplicate(second) {
		t.Error("second submission with same URL not flagged as duplicate")
	}

	// Advisory only: submitting anyway still works.
	if _, err := e.Submit(context.Background(), second); err != nil {
		t.Fatalf("override Submit failed: %v", err)
	}
	if len(col.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(col.Entries))
	}
}

func TestCheckDuplicateFreshArticle(t *testing.T) {
	e := New(&stubProvider{}, ledger.New())
	if e.CheckDuplicate(testArticle()) {
		t.Error("fresh article flagged as duplicate on empty ledger")
	}
}
