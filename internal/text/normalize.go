// Package text holds the text clean-up and chunking used before summarization.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	newlineRun    = regexp.MustCompile(`\n+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize decomposes s into compatibility form (NFKD), drops every
// non-ASCII code point, collapses runs of newlines and then runs of
// whitespace into single separators, and trims the result.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	decomposed := norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	out := newlineRun.ReplaceAllString(b.String(), "\n")
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate cuts s to at most n bytes on a word boundary where possible.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
