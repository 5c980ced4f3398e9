// Package export writes rules to local .mdc files.
package export

import (
	"strings"

	"rulegate/internal/core"
)

// separator closes the metadata block; joined with "\n" it renders as "\n---\n"
const separator = "\n---\n"

// Compose renders a rule as an .mdc document: optional metadata lines
// (title, category, author, tags), a "---" separator and the content.
func Compose(rec core.Record) string {
	lines := make([]string, 0, 5)

	if v := rec["title"]; core.Truthy(v) {
		lines = append(lines, "# "+core.Display(v))
	}
	if v := rec["category"]; core.Truthy(v) {
		lines = append(lines, "Category: "+core.Display(v))
	}
	if v := rec["authorName"]; core.Truthy(v) {
		lines = append(lines, "Author: "+core.Display(v))
	}
	if tags, ok := rec["tags"].([]interface{}); ok && len(tags) > 0 {
		parts := make([]string, len(tags))
		for i, t := range tags {
			parts[i] = core.Display(t)
		}
		lines = append(lines, "Tags: "+strings.Join(parts, ", "))
	}

	lines = append(lines, separator)

	doc := strings.Join(lines, "\n")
	if v := rec["content"]; core.Truthy(v) {
		doc += "\n" + core.Display(v)
	}
	return doc
}
