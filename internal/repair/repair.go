// Package repair recovers a JSON object from raw LLM output. Models wrap the
// object in prose or code fences, truncate it at the token limit, or emit
// unescaped quotes inside string values; the cascade here tries increasingly
// aggressive candidates and heuristic fixes before giving up.
package repair

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// FormatError is returned when every extraction strategy and repair pass
// failed. It retains the raw response and the last parse error for operator
// inspection.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return "no parseable JSON object in response: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

// strategy extracts a candidate JSON substring from raw text. ok is false
// when the strategy does not apply to this input.
type strategy func(text string) (candidate string, ok bool)

var strategies = []strategy{
	fencedBlock,
	outerBraces,
	wholeText,
}

// Parse extracts and parses the JSON object contained in text. Each strategy's
// candidate is tried strictly first, then once more after a repair pass. The
// first success wins; if all fail, a *FormatError is returned.
func Parse(text string) (map[string]any, error) {
	var lastErr error
	for _, extract := range strategies {
		candidate, ok := extract(text)
		if !ok {
			continue
		}

		doc, err := parseObject(candidate)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		doc, err = parseObject(repairCandidate(candidate))
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errNoCandidate
	}
	return nil, &FormatError{Raw: text, Err: lastErr}
}

var errNoCandidate = errors.New("empty response")

func parseObject(candidate string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// fencedBlock extracts the interior of the first ``` fenced block.
func fencedBlock(text string) (string, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// outerBraces extracts the substring from the first '{' to the last '}'.
// Greedy on purpose: the outermost braces bound the whole object even when
// values contain nested objects.
func outerBraces(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		// Truncated output with no closing brace: hand the tail to the
		// repair pass, which knows how to close it.
		return text[start:], true
	}
	return text[start : end+1], true
}

func wholeText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}

// repairCandidate applies the heuristic fixes in order. Fixes restructure
// syntax only; they never invent field values.
func repairCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = trimWrappingQuotes(s)
	s = closeTruncated(s)
	s = reescapeQuotes(s)
	return s
}

// trimWrappingQuotes strips a quote pair wrapping the entire candidate, as
// produced by models that quote their whole answer.
func trimWrappingQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// closeTruncated repairs output cut off at the token limit: it closes an open
// string or array on an incomplete trailing line, drops a dangling comma, and
// appends closing braces until the brace count balances. A candidate already
// ending in '}' is returned unchanged.
func closeTruncated(s string) string {
	if strings.HasSuffix(strings.TrimRight(s, " \t\r\n"), "}") {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ",") || strings.HasSuffix(line, "{") || strings.HasSuffix(line, "}") {
			lines[i] = line
			continue
		}
		if strings.Contains(line, ":") {
			if strings.Count(line, `"`)%2 == 1 {
				line += `"`
			}
			if strings.Count(line, "[") > strings.Count(line, "]") {
				line += "]"
			}
		}
		lines[i] = line
	}
	s = strings.Join(lines, "\n")

	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, ",")
	if open := strings.Count(s, "{") - strings.Count(s, "}"); open > 0 {
		s += strings.Repeat("}", open)
	}
	return s
}

var keyOpenRe = regexp.MustCompile(`"[^"\n]*"\s*:\s*"`)

// reescapeQuotes escapes naked quote characters inside the string value of a
// `"key": "value"` pair. A quote already preceded by a backslash is left
// alone, as is the quote that terminates the value (one followed by a comma,
// closing bracket, closing brace, or end of line). Last-resort heuristic:
// adversarial values can defeat it, so it runs only inside the repair pass.
func reescapeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	rest := s
	for {
		loc := keyOpenRe.FindStringIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:loc[1]])
		value := rest[loc[1]:]
		rest = ""

		for i := 0; i < len(value); i++ {
			if value[i] == '\\' {
				i++ // skip the escaped character
				continue
			}
			if value[i] != '"' {
				continue
			}
			if terminatesValue(value[i+1:]) {
				b.WriteString(value[:i])
				b.WriteByte('"')
				rest = value[i+1:]
				value = ""
				break
			}
			// Naked interior quote: escape it and keep scanning.
			b.WriteString(value[:i])
			b.WriteString(`\"`)
			value = value[i+1:]
			i = -1
		}
		b.WriteString(value)
		if rest == "" {
			return b.String()
		}
	}
}

// terminatesValue reports whether the text following a quote indicates the
// quote closed a JSON string value.
func terminatesValue(after string) bool {
	trimmed := strings.TrimLeft(after, " \t\r")
	if trimmed == "" {
		return true
	}
	switch trimmed[0] {
	case ',', '}', ']', '\n':
		return true
	}
	return false
}
