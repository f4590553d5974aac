// Package analysis defines the extracted-analysis schema and normalizes the
// loosely shaped documents recovered from model output into it.
package analysis

import (
	"math"
	"strings"
)

// UnknownNarrative is the default primary narrative when the model did not
// name one.
const UnknownNarrative = "UNKNOWN"

// Scores holds the three 0-5 ratings assigned by the model.
type Scores struct {
	RussianAlignment float64 `json:"russian_alignment"`
	Sophistication   float64 `json:"sophistication"`
	Effectiveness    float64 `json:"effectiveness"`
}

// Analysis is the fixed-shape propaganda analysis stored per entry. Every
// field is always populated; Normalize fills defaults for anything the model
// left out or mistyped.
type Analysis struct {
	Translation      *string  `json:"translation"`
	PrimaryNarrative string   `json:"primary_narrative"`
	Techniques       []string `json:"techniques"`
	KeyPhrases       []string `json:"key_phrases"`
	EmotionalAppeals []string `json:"emotional_appeals"`
	TargetAudience   string   `json:"target_audience"`
	Scores           Scores   `json:"scores"`
	AnalysisNotes    string   `json:"analysis_notes"`
}

// Normalize converts a parsed response document into an Analysis. It never
// fails: missing or wrong-typed fields get documented defaults, list fields
// that are not lists become empty, non-object scores are replaced wholesale,
// and every string is sanitized so the result survives serialization.
func Normalize(doc map[string]any) Analysis {
	a := Analysis{
		PrimaryNarrative: UnknownNarrative,
		Techniques:       []string{},
		KeyPhrases:       []string{},
		EmotionalAppeals: []string{},
		TargetAudience:   "Unknown",
	}
	if doc == nil {
		return a
	}

	if v, ok := doc["translation"].(string); ok {
		s := sanitize(v)
		a.Translation = &s
	}
	a.PrimaryNarrative = getString(doc, "primary_narrative", UnknownNarrative)
	a.Techniques = getStringList(doc, "techniques")
	a.KeyPhrases = getStringList(doc, "key_phrases")
	a.EmotionalAppeals = getStringList(doc, "emotional_appeals")
	a.TargetAudience = getString(doc, "target_audience", "Unknown")
	a.AnalysisNotes = getString(doc, "analysis_notes", "")

	if scores, ok := doc["scores"].(map[string]any); ok {
		a.Scores = Scores{
			RussianAlignment: getScore(scores, "russian_alignment"),
			Sophistication:   getScore(scores, "sophistication"),
			Effectiveness:    getScore(scores, "effectiveness"),
		}
	}

	return a
}

// sanitize strips embedded NUL bytes. Printable text is left untouched; this
// exists so a stored value always round-trips through the JSON encoder.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func getString(doc map[string]any, key, fallback string) string {
	if v, ok := doc[key].(string); ok {
		return sanitize(v)
	}
	return fallback
}

func getStringList(doc map[string]any, key string) []string {
	out := []string{}
	arr, ok := doc[key].([]any)
	if !ok {
		return out
	}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, sanitize(s))
		}
	}
	return out
}

// getScore reads a numeric rating and clamps it to the 0-5 scale. Anything
// non-numeric, including NaN, counts as 0.
func getScore(scores map[string]any, key string) float64 {
	n, ok := scores[key].(float64)
	if !ok || math.IsNaN(n) {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}
