// Package extract orchestrates processing one article: duplicate check,
// analysis request, response repair, schema normalization, and the single
// append into the ledger.
package extract

import (
	"context"
	"fmt"
	"log"

	"github.com/disinfowatch/propextract/internal/analysis"
	"github.com/disinfowatch/propextract/internal/dedup"
	"github.com/disinfowatch/propextract/internal/ledger"
	"github.com/disinfowatch/propextract/internal/llm"
	"github.com/disinfowatch/propextract/internal/repair"
)

// Article is one submission: the source text plus its provenance and any
// human analysis pasted alongside it.
type Article struct {
	Title          string
	SourceURL      string
	SourceLanguage string
	OriginalText   string
	HumanAnalysis  string
}

// Extractor runs submissions against a backend and appends results to the
// collection it owns for the process lifetime.
type Extractor struct {
	provider llm.Provider
	col      *ledger.Collection
}

// New creates an extractor over the given backend and collection.
func New(provider llm.Provider, col *ledger.Collection) *Extractor {
	return &Extractor{provider: provider, col: col}
}

// Collection exposes the owned collection for saving and inspection.
func (e *Extractor) Collection() *ledger.Collection { return e.col }

// CheckDuplicate reports whether the article looks like an existing entry.
// Advisory only: the caller decides whether to submit anyway.
func (e *Extractor) CheckDuplicate(a Article) bool {
	return dedup.LooksLikeDuplicate(e.col.Entries, a.OriginalText, a.Title, a.SourceURL)
}

// Submit processes one article end to end and returns the appended entry.
// A backend failure or an unrecoverable response format returns an error and
// appends nothing; a partial record never enters the collection.
func (e *Extractor) Submit(ctx context.Context, a Article) (*ledger.Entry, error) {
	prompt := buildPrompt(a.OriginalText, a.HumanAnalysis, a.SourceLanguage)

	raw, err := e.provider.Analyze(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis request: %w", err)
	}

	doc, err := repair.Parse(raw)
	if err != nil {
		return nil, err
	}

	entry := e.col.Append(ledger.Entry{
		Title:          a.Title,
		SourceURL:      a.SourceURL,
		SourceLanguage: a.SourceLanguage,
		OriginalText:   a.OriginalText,
		HumanAnalysis:  a.HumanAnalysis,
		Analysis:       analysis.Normalize(doc),
	})
	log.Printf("Created entry #%d: %s [%s]", entry.ID, entry.Title, entry.Analysis.PrimaryNarrative)
	return entry, nil
}
