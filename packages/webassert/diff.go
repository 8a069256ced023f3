package webassert

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/pmezard/go-difflib/difflib"
)

// minPartialMatch is the shortest prefix of a missing substring worth
// highlighting.
const minPartialMatch = 2

// highlightPartialMatch renders subject with the longest prefix of needle
// found in it underlined by carets:
//
//	Hello Webdriver
//	^^^^^^^
func highlightPartialMatch(subject, needle string) string {
	idx, n := longestPrefixMatch(subject, needle)
	if n == 0 {
		return subject
	}

	var b strings.Builder
	lines := strings.Split(subject, "\n")
	offset := 0
	for i, line := range lines {
		b.WriteString(line)

		start, end := offset, offset+len(line)
		from, to := max(idx, start), min(idx+n, end)
		if from < to {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", runewidth.StringWidth(line[:from-start])))
			b.WriteString(strings.Repeat("^", runewidth.StringWidth(line[from-start:to-start])))
		}

		if i < len(lines)-1 {
			b.WriteString("\n")
		}
		offset = end + 1
	}
	return b.String()
}

// longestPrefixMatch returns the byte index and length of the longest prefix
// of needle occurring in subject, or 0, 0.
func longestPrefixMatch(subject, needle string) (int, int) {
	for n := len(needle); n > 0; {
		prefix := needle[:n]
		if utf8.RuneCountInString(prefix) < minPartialMatch {
			break
		}
		if idx := strings.Index(subject, prefix); idx >= 0 {
			return idx, n
		}
		_, size := utf8.DecodeLastRuneInString(prefix)
		n -= size
	}
	return 0, 0
}

// valueDiff renders a unified diff of expected against actual.
func valueDiff(expected, actual string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}
