package issue

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor pulls named fields out of a semi-structured submission body.
// Submitters do not format issues consistently, so each field is tried
// against an ordered list of patterns: form-style headings first, then bold
// "key: value" markers, then bare "key value" lines. The first pattern with a
// non-empty match wins. Missing required fields accumulate in Errors.
type Extractor struct {
	body   string
	Errors []string
}

// NewExtractor wraps a raw submission body.
func NewExtractor(body string) *Extractor {
	return &Extractor{body: body}
}

// Field returns the trimmed first match for a single-line field, or empty.
func (e *Extractor) Field(name string, required bool) string {
	quoted := regexp.QuoteMeta(name)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)### ` + quoted + `\*?[ \t]*\n\s*([^\n]+)`),
		regexp.MustCompile(`(?i)\*\*` + quoted + `\*?:?\s*\*\*\s*([^\n]+)`),
		regexp.MustCompile(`(?i)` + quoted + `\*?:?[ \t]+([^\n]+)`),
	}

	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(e.body); m != nil {
			if value := strings.TrimSpace(m[1]); value != "" {
				return value
			}
		}
	}

	if required {
		e.Errors = append(e.Errors, fmt.Sprintf("Missing required field: %s", name))
	}
	return ""
}

// MultilineField captures all text after a heading marker up to the next
// heading, a blank line, or end of input.
func (e *Extractor) MultilineField(name string, required bool) string {
	quoted := regexp.QuoteMeta(name)
	pattern := regexp.MustCompile(`(?is)### ` + quoted + `\*?\s*\n(.*?)(?:\n###|\n\n|\z)`)

	if m := pattern.FindStringSubmatch(e.body); m != nil {
		if value := strings.TrimSpace(m[1]); value != "" {
			return value
		}
	}

	if required {
		e.Errors = append(e.Errors, fmt.Sprintf("Missing required field: %s", name))
	}
	return ""
}
