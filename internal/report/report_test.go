package report

import (
	"strings"
	"testing"

	"github.com/disinfowatch/propextract/internal/analysis"
	"github.com/disinfowatch/propextract/internal/ledger"
)

func sampleCollection() *ledger.Collection {
	c := ledger.New()
	c.Append(ledger.Entry{
		Title:          "Encirclement op-ed",
		SourceURL:      "https://example.org/encirclement",
		SourceLanguage: "russian",
		OriginalText:   "text",
		Analysis: analysis.Analysis{
			PrimaryNarrative: "ENCIRCLEMENT_NARRATIVE",
			Techniques:       []string{"Victim_Blaming", "Deflection"},
			KeyPhrases:       []string{"ring of enemies"},
			TargetAudience:   "domestic audience",
			Scores:           analysis.Scores{RussianAlignment: 5, Sophistication: 3, Effectiveness: 4},
			AnalysisNotes:    "Textbook encirclement.",
		},
	})
	c.Append(ledger.Entry{
		Title:    "Sanctions piece",
		Analysis: analysis.Analysis{PrimaryNarrative: "ENCIRCLEMENT_NARRATIVE"},
	})
	return c
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleCollection())

	for _, want := range []string{
		"# Propaganda Pattern Digest",
		"2 entries",
		"- ENCIRCLEMENT_NARRATIVE: 2",
		"## #1 Encirclement op-ed",
		"Victim_Blaming, Deflection",
		`"ring of enemies"`,
		"alignment 5/5",
		"## #2 Sanctions piece",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("digest missing %q", want)
		}
	}
}

func TestMarkdownEmptyCollection(t *testing.T) {
	got := Markdown(ledger.New())
	if !strings.Contains(got, "0 entries") || !strings.Contains(got, "No entries recorded yet.") {
		t.Errorf("empty digest = %q", got)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleCollection())
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Error("missing document shell")
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Propaganda Pattern Digest") {
		t.Error("markdown heading not rendered to HTML")
	}
	if !strings.Contains(html, "Encirclement op-ed") {
		t.Error("entry content missing from HTML")
	}
}
