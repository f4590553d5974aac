// Package report renders a readable digest of the collection: a markdown
// document per entry, optionally converted to a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/disinfowatch/propextract/internal/ledger"
)

var md = goldmark.New()

// Markdown renders the collection as a markdown digest.
func Markdown(c *ledger.Collection) string {
	var sections []string

	header := fmt.Sprintf("# Propaganda Pattern Digest\n\n%d entries, last updated %s.",
		len(c.Entries), c.Metadata.LastUpdated)
	sections = append(sections, header)

	if len(c.Entries) == 0 {
		sections = append(sections, "No entries recorded yet.")
		return strings.Join(sections, "\n\n")
	}

	sections = append(sections, narrativeSummary(c.Entries))
	for _, e := range c.Entries {
		sections = append(sections, entrySection(e))
	}

	return strings.Join(sections, "\n\n---\n\n")
}

func narrativeSummary(entries []ledger.Entry) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		n := e.Analysis.PrimaryNarrative
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}

	lines := []string{"## Narratives"}
	for _, n := range order {
		lines = append(lines, fmt.Sprintf("- %s: %d", n, counts[n]))
	}
	return strings.Join(lines, "\n")
}

func entrySection(e ledger.Entry) string {
	title := e.Title
	if title == "" {
		title = "Untitled"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## #%d %s\n\n", e.ID, title)
	if e.SourceURL != "" {
		fmt.Fprintf(&b, "Source: <%s> (%s)\n\n", e.SourceURL, e.SourceLanguage)
	}
	fmt.Fprintf(&b, "**Narrative:** %s\n\n", e.Analysis.PrimaryNarrative)
	if len(e.Analysis.Techniques) > 0 {
		fmt.Fprintf(&b, "**Techniques:** %s\n\n", strings.Join(e.Analysis.Techniques, ", "))
	}
	if len(e.Analysis.KeyPhrases) > 0 {
		b.WriteString("**Key phrases:**\n")
		for _, p := range e.Analysis.KeyPhrases {
			fmt.Fprintf(&b, "- %q\n", p)
		}
		b.WriteString("\n")
	}
	s := e.Analysis.Scores
	fmt.Fprintf(&b, "**Scores:** alignment %.0f/5, sophistication %.0f/5, effectiveness %.0f/5\n",
		s.RussianAlignment, s.Sophistication, s.Effectiveness)
	if e.Analysis.AnalysisNotes != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Analysis.AnalysisNotes)
	}
	return strings.TrimRight(b.String(), "\n")
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Propaganda Pattern Digest</title>
<style>body { max-width: 52rem; margin: 2rem auto; font-family: sans-serif; line-height: 1.5; padding: 0 1rem; }</style>
</head>
<body>
%s
</body>
</html>
`

// HTML renders the digest as a standalone HTML page.
func HTML(c *ledger.Collection) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(c)), &buf); err != nil {
		return nil, fmt.Errorf("rendering digest: %w", err)
	}
	return []byte(fmt.Sprintf(htmlShell, buf.String())), nil
}
