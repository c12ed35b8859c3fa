// Package chapters turns a model's chapter list answer into chapter titles.
package chapters

import (
	"strings"
	"unicode"
)

// Extract parses a newline separated chapter list.
//
// Each non-blank line keeps only the text after its first ".", loses every
// string in strip (applied in order) and every decimal digit, and is trimmed.
// The first line is then dropped unconditionally because models usually open
// with a preamble such as "Here are some ideas:". Lines left empty are dropped.
// If the answer has no preamble, the first real chapter is lost.
func Extract(raw string, strip []string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, Clean(line, strip))
	}

	if len(lines) == 0 {
		return []string{}
	}
	lines = lines[1:]

	titles := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}

// Clean normalizes a single line of the answer.
func Clean(line string, strip []string) string {
	if _, after, found := strings.Cut(line, "."); found {
		line = after
	}
	line = strings.TrimSpace(line)

	for _, s := range strip {
		if s == "" {
			continue
		}
		line = strings.ReplaceAll(line, s, "")
	}

	line = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, line)

	return strings.TrimSpace(line)
}
