package catalog

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy

	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// SanitizeDescription reduces rich-text descriptions to plain text. Line
// break tags become newlines and all other markup is dropped.
func SanitizeDescription(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	withBreaks := lineBreakTag.ReplaceAllString(trimmed, "\n")
	cleaned := html.UnescapeString(descriptionSanitizer().Sanitize(withBreaks))

	lines := strings.Split(cleaned, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func descriptionSanitizer() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		descriptionPolicy = bluemonday.StrictPolicy()
	})
	return descriptionPolicy
}
