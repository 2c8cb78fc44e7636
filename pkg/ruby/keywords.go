// Package ruby classifies Ruby statement text well enough to drive block
// tracking during extraction. It never parses Ruby; everything here is
// keyword sniffing over opaque statement strings.
package ruby

import (
	"regexp"
	"strings"
)

// Keyword is the classification of a statement's leading keyword.
type Keyword int

const (
	// KeywordNone means the statement neither opens nor continues a block.
	KeywordNone Keyword = iota
	// KeywordBlockStart opens a block that must be closed with `end`.
	KeywordBlockStart
	// KeywordMidBlock continues an already-open block (else, rescue, ...).
	KeywordMidBlock
	// KeywordLoop opens a loop block. Loops are recognized from the first
	// token because the general extraction pattern misses forms like
	// `for x in xs`.
	KeywordLoop
)

var loopKeywords = map[string]bool{
	"for":   true,
	"until": true,
	"while": true,
}

var startBlockKeywords = map[string]bool{
	"if":     true,
	"unless": true,
	"case":   true,
	"begin":  true,
	"for":    true,
	"until":  true,
	"while":  true,
}

var midBlockKeywords = map[string]bool{
	"else":   true,
	"elsif":  true,
	"when":   true,
	"rescue": true,
	"ensure": true,
}

// keywordPattern pulls the leading keyword out of a statement: either a word
// followed by whitespace or an opening paren, or a word that is the entire
// statement.
var keywordPattern = regexp.MustCompile(`^\s*([a-z_]+)[\s(]|^\s*([a-z_]+)$`)

// anonymousBlockPattern matches statements ending in a `do` block opener,
// optionally with a |param| list and a trailing comment.
var anonymousBlockPattern = regexp.MustCompile(`\bdo\s*(\|\s*[^|]*\s*\|)?(\s*#.*)?$`)

// Classify returns the leading keyword of stmt and its classification.
// Statements with no recognizable keyword classify as KeywordNone with an
// empty keyword; that is a normal outcome, not an error.
func Classify(stmt string) (string, Keyword) {
	fields := strings.Fields(stmt)
	if len(fields) > 0 && loopKeywords[fields[0]] {
		return fields[0], KeywordLoop
	}

	m := keywordPattern.FindStringSubmatch(stmt)
	if m == nil {
		return "", KeywordNone
	}
	kw := m[1]
	if kw == "" {
		kw = m[2]
	}

	switch {
	case startBlockKeywords[kw]:
		return kw, KeywordBlockStart
	case midBlockKeywords[kw]:
		return kw, KeywordMidBlock
	default:
		return "", KeywordNone
	}
}

// StartsBlock reports whether stmt opens a block by keyword.
func StartsBlock(stmt string) bool {
	_, class := Classify(stmt)
	return class == KeywordBlockStart || class == KeywordLoop
}

// MidBlock reports whether stmt continues an open block and therefore
// aligns with the block opener rather than nesting under it.
func MidBlock(stmt string) bool {
	_, class := Classify(stmt)
	return class == KeywordMidBlock
}

// AnonymousBlock reports whether stmt ends in a `do` block opener.
func AnonymousBlock(stmt string) bool {
	return anonymousBlockPattern.MatchString(stmt)
}
