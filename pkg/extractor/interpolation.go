package extractor

import (
	"strings"
)

// interpolation is one `#{...}` expression found inside a filter body.
type interpolation struct {
	code string
	// lineOffset is 1-based relative to the filter node's line: the first
	// line of the filter body is offset 1.
	lineOffset int
}

// interpolations scans text for interpolated Ruby expressions, balancing
// nested braces. Escaped interpolations (`\#{...}`) are skipped. The
// expression text is returned verbatim, with its line offset inside the
// filter body.
func interpolations(text string) []interpolation {
	var found []interpolation

	line := 1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			line++
		case '\\':
			// An escaped `\#{` is literal text, not an interpolation.
			if i+1 < len(text) && text[i+1] == '#' {
				i++
			}
		case '#':
			if i+1 >= len(text) || text[i+1] != '{' {
				continue
			}
			start := i + 2
			depth := 1
			j := start
			for ; j < len(text) && depth > 0; j++ {
				switch text[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			if depth != 0 {
				// Unterminated interpolation; nothing analyzable follows.
				return found
			}
			code := text[start : j-1]
			found = append(found, interpolation{
				code:       code,
				lineOffset: line,
			})
			line += strings.Count(code, "\n")
			i = j - 1
		}
	}

	return found
}
