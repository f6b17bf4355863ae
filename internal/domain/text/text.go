// Package text cleans free text submitted through the admin API.
package text

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips every tag. bluemonday policies are safe for concurrent use
// after creation.
var policy = bluemonday.StrictPolicy()

// Clean removes markup from s, unescapes the entities the sanitizer
// produced and trims surrounding whitespace.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// CleanAll cleans every entry and drops the ones left empty.
func CleanAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}
