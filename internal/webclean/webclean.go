// Package webclean cleans up text pasted from a browser: HTML tags, entity
// references, and the whitespace mess that copy-paste brings along.
package webclean

import "strings"

var entities = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&apos;", "'"},
	{"&#39;", "'"},
	{"&#8217;", "'"},
	{"&#8220;", `"`},
	{"&#8221;", `"`},
	{"&#8211;", "-"},
	{"&#8212;", "--"},
}

// Clean strips HTML tags, decodes common entities, and normalizes whitespace
// while preserving line structure. Returns "" for effectively empty input.
func Clean(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	content = stripTags(content)
	for _, e := range entities {
		content = strings.ReplaceAll(content, e.from, e.to)
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = collapseSpaces(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func stripTags(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
