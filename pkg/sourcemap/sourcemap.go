// Package sourcemap tracks the correspondence between lines of a generated
// Ruby script and lines of the HAML document it was extracted from.
package sourcemap

import (
	"encoding/json"
	"strconv"

	"gitlab.com/tozd/go/errors"
)

// Map is an append-only mapping from synthetic line numbers to original
// document line numbers. Synthetic lines are implicit: the nth appended
// entry is synthetic line n, so the key set is always exactly {1..Len()}
// with no gaps.
type Map struct {
	originals []int
}

// New returns an empty map.
func New() *Map {
	return &Map{}
}

// Add records that the next synthetic line originates from originalLine and
// returns the synthetic line number it was assigned.
func (m *Map) Add(originalLine int) int {
	m.originals = append(m.originals, originalLine)
	return len(m.originals)
}

// Lookup returns the original line for a synthetic line.
func (m *Map) Lookup(syntheticLine int) (int, bool) {
	if syntheticLine < 1 || syntheticLine > len(m.originals) {
		return 0, false
	}
	return m.originals[syntheticLine-1], true
}

// Len returns the number of mapped synthetic lines.
func (m *Map) Len() int {
	return len(m.originals)
}

// Each calls fn for every entry in synthetic line order.
func (m *Map) Each(fn func(syntheticLine, originalLine int)) {
	for i, orig := range m.originals {
		fn(i+1, orig)
	}
}

// Validate checks the map against the line count of the script it was built
// for. A mismatch means extraction bookkeeping is broken.
func (m *Map) Validate(scriptLineCount int) error {
	if len(m.originals) != scriptLineCount {
		return errors.Errorf("source map covers %d lines but script has %d", len(m.originals), scriptLineCount)
	}
	return nil
}

// MarshalJSON encodes the map as an object keyed by synthetic line number.
func (m *Map) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(m.originals))
	for i, orig := range m.originals {
		out[strconv.Itoa(i+1)] = orig
	}
	return json.Marshal(out)
}
