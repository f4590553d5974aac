// Package ledger owns the on-disk collection of analysis entries: an
// append-growing, human-readable JSON document with load-time repair and
// persist-time fallback so a bad file or a bad value never loses data.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/disinfowatch/propextract/internal/analysis"
)

// ExtractionMethod identifies how entries in the collection were produced.
const ExtractionMethod = "LLM-powered"

// Sidecar suffixes. The corrupted sidecar keeps a byte-for-byte copy of an
// unparseable file; the error backup holds a textual dump written when
// serialization of the in-memory collection failed.
const (
	CorruptedSuffix   = ".corrupted.bak"
	ErrorBackupSuffix = ".error_backup.json"
)

// Metadata describes the collection as a whole.
type Metadata struct {
	Created          string `json:"created"`
	LastUpdated      string `json:"last_updated"`
	TotalEntries     int    `json:"total_entries"`
	ExtractionMethod string `json:"extraction_method"`
}

// Entry is one processed article with its extracted analysis.
type Entry struct {
	ID             int               `json:"id"`
	Timestamp      string            `json:"timestamp"`
	Title          string            `json:"title"`
	SourceURL      string            `json:"source_url"`
	SourceLanguage string            `json:"source_language"`
	OriginalText   string            `json:"original_text"`
	HumanAnalysis  string            `json:"human_analysis"`
	Analysis       analysis.Analysis `json:"llm_analysis"`
}

// Collection is the in-memory form of the ledger file. It is a plain value
// owned by the caller; nothing here keeps hidden state.
type Collection struct {
	Metadata Metadata `json:"metadata"`
	Entries  []Entry  `json:"entries"`
}

// New returns a freshly initialized empty collection.
func New() *Collection {
	now := time.Now().Format(time.RFC3339)
	return &Collection{
		Metadata: Metadata{
			Created:          now,
			LastUpdated:      now,
			TotalEntries:     0,
			ExtractionMethod: ExtractionMethod,
		},
		Entries: []Entry{},
	}
}

// Load reads the collection at path. A missing file yields a fresh empty
// collection. An unparseable file is copied to a .corrupted.bak sidecar and
// replaced by a fresh collection; a parseable file with missing keys or a
// wrong-shaped entries list is repaired in place. Only genuinely unexpected
// conditions (an unreadable existing file) return an error.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Corrupted collection file %s: %v", path, err)
		sidecar := path + CorruptedSuffix
		if werr := os.WriteFile(sidecar, data, 0o644); werr != nil {
			log.Printf("Could not write corrupted backup: %v", werr)
		} else {
			log.Printf("Corrupted file backed up to %s", sidecar)
		}
		return New(), nil
	}

	c := New()

	if md, ok := raw["metadata"].(map[string]any); ok {
		if s, ok := md["created"].(string); ok {
			c.Metadata.Created = s
		}
		if s, ok := md["last_updated"].(string); ok {
			c.Metadata.LastUpdated = s
		}
		if s, ok := md["extraction_method"].(string); ok {
			c.Metadata.ExtractionMethod = s
		}
	} else {
		log.Printf("Collection missing metadata, adding it")
	}

	rawEntries, ok := raw["entries"].([]any)
	if !ok {
		if _, present := raw["entries"]; present {
			log.Printf("Collection entries is not a list, replacing with empty")
		} else {
			log.Printf("Collection missing entries, adding it")
		}
	}
	for i, re := range rawEntries {
		item, err := json.Marshal(re)
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(item, &e); err != nil {
			// A type mismatch still decodes the remaining fields; keep the
			// partial entry rather than dropping the record.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				log.Printf("Skipping malformed entry %d: %v", i+1, err)
				continue
			}
			log.Printf("Entry %d has malformed fields, keeping partial decode: %v", i+1, err)
		}
		c.Entries = append(c.Entries, e)
	}

	c.Metadata.TotalEntries = len(c.Entries)
	return c, nil
}

// Append adds entry to the collection, assigning the next ID and the creation
// timestamp. IDs are count-based and never reused. This is the only place the
// collection is permitted to grow.
func (c *Collection) Append(entry Entry) *Entry {
	entry.ID = len(c.Entries) + 1
	entry.Timestamp = time.Now().Format(time.RFC3339)
	c.Entries = append(c.Entries, entry)
	return &c.Entries[len(c.Entries)-1]
}

// Save writes the collection to path, refreshing last_updated and
// total_entries first. The write goes through a temp file and rename, so the
// target always holds either the previous or the new state. If serialization
// fails, a textual dump goes to an .error_backup.json sidecar and a sanitized
// form, with any unserializable leaf replaced by a placeholder string, is
// written instead; the in-memory entries are never lost.
func (c *Collection) Save(path string) error {
	c.Metadata.LastUpdated = time.Now().Format(time.RFC3339)
	c.Metadata.TotalEntries = len(c.Entries)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		log.Printf("JSON serialization error: %v", err)

		backup := path + ErrorBackupSuffix
		if werr := os.WriteFile(backup, []byte(fmt.Sprintf("%+v\n", c)), 0o644); werr != nil {
			log.Printf("Could not write error backup: %v", werr)
		} else {
			log.Printf("In-memory collection dumped to %s", backup)
		}

		data, err = json.MarshalIndent(sanitizeValue(c.generic()), "", "  ")
		if err != nil {
			return fmt.Errorf("serializing sanitized collection: %w", err)
		}
		log.Printf("Saved sanitized collection with %d entries", len(c.Entries))
	}

	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing collection: %w", err)
	}
	return nil
}

// generic rebuilds the collection as plain maps and slices so the sanitize
// pass can probe each leaf independently.
func (c *Collection) generic() map[string]any {
	entries := make([]any, 0, len(c.Entries))
	for _, e := range c.Entries {
		entries = append(entries, map[string]any{
			"id":              e.ID,
			"timestamp":       e.Timestamp,
			"title":           e.Title,
			"source_url":      e.SourceURL,
			"source_language": e.SourceLanguage,
			"original_text":   e.OriginalText,
			"human_analysis":  e.HumanAnalysis,
			"llm_analysis": map[string]any{
				"translation":       e.Analysis.Translation,
				"primary_narrative": e.Analysis.PrimaryNarrative,
				"techniques":        toAnyList(e.Analysis.Techniques),
				"key_phrases":       toAnyList(e.Analysis.KeyPhrases),
				"emotional_appeals": toAnyList(e.Analysis.EmotionalAppeals),
				"target_audience":   e.Analysis.TargetAudience,
				"scores": map[string]any{
					"russian_alignment": e.Analysis.Scores.RussianAlignment,
					"sophistication":    e.Analysis.Scores.Sophistication,
					"effectiveness":     e.Analysis.Scores.Effectiveness,
				},
				"analysis_notes": e.Analysis.AnalysisNotes,
			},
		})
	}
	return map[string]any{
		"metadata": map[string]any{
			"created":           c.Metadata.Created,
			"last_updated":      c.Metadata.LastUpdated,
			"total_entries":     c.Metadata.TotalEntries,
			"extraction_method": c.Metadata.ExtractionMethod,
		},
		"entries": entries,
	}
}

func toAnyList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

const sanitizedPlaceholder = "[SANITIZED: could not serialize]"

// sanitizeValue walks a generic JSON value and replaces any leaf the encoder
// rejects (NaN or infinite floats, in practice) with a diagnostic placeholder.
// The result is guaranteed to serialize.
func sanitizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sanitizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitizeValue(val)
		}
		return out
	default:
		if _, err := json.Marshal(v); err != nil {
			return sanitizedPlaceholder
		}
		return v
	}
}
