package ai

import (
	"strings"
)

// Models keep prefixing their output with framing text despite the
// instructions, so generated text is cleaned before it reaches a user.
var boilerplatePrefixes = []string{
	"question:",
	"here's a question:",
	"here is a question:",
	"here's a follow-up question:",
	"here is a follow-up question:",
	"follow-up question:",
	"follow up question:",
	"response:",
	"here's my response:",
	"here is my response:",
	"sure!",
	"sure,",
}

// Clean trims generated text, strips known boilerplate prefixes, and removes
// wrapping quotes.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	for _, prefix := range boilerplatePrefixes {
		if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = strings.TrimSpace(s[len(prefix):])
		}
	}

	s = stripWrappingQuotes(s)
	return strings.TrimSpace(s)
}

// CollapseNewlines flattens multi-line output to a single line. Used for
// generated questions, which must read as one sentence.
func CollapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"},
	{"‘", "’"},
}

func stripWrappingQuotes(s string) string {
	for _, pair := range quotePairs {
		if len(s) > len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}
