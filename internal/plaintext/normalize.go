// Package plaintext turns markdown-flavored model output into plain text.
package plaintext

import "regexp"

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Rules run in this order. Every replacement drops at least one of
// '#', '*', '`', '-' or '\n', so repeating them always reaches a fixed point.
var rules = []rule{
	{regexp.MustCompile(`(?m)^[ \t]*#+[ \t]+`), ""},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^\s*](?:[^*\n]*[^\s*])?)\*`), "$1"},
	{regexp.MustCompile("(?s)```[\\w+-]*[ \\t]*\\n?(.*?)\\n?```"), "$1"},
	{regexp.MustCompile("`([^`\\n]+)`"), "$1"},
	{regexp.MustCompile(`(?m)^([ \t]*)[-*][ \t]+`), "$1• "},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Normalize strips headings, emphasis and code markers, converts list
// markers to "•" and collapses runs of blank lines. Normalize is idempotent.
func Normalize(s string) string {
	for {
		next := apply(s)
		if next == s {
			return s
		}
		s = next
	}
}

func apply(s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
