// Package extractor converts a parsed HAML document tree into a standalone
// Ruby script that a Ruby linter can analyze, together with a source map
// from the script's lines back to the document's lines.
//
// The generated script is never meant to run. It only has to be structurally
// plausible: blocks are closed, placeholder statements stand in for markup,
// and attribute expressions are wrapped so the linter sees them as ordinary
// Ruby.
package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/hamlint/pkg/ast"
	"github.com/walteh/hamlint/pkg/ruby"
	"github.com/walteh/hamlint/pkg/sourcemap"
	"github.com/walteh/hamlint/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// Source is the result of one extraction: the synthetic Ruby script and the
// line map back to the original document. It is immutable once returned.
type Source struct {
	Script  string
	LineMap *sourcemap.Map
}

// Option configures a RubyExtractor.
type Option func(*RubyExtractor)

// WithRubyFilterPredicate overrides the predicate deciding which filter
// types contain Ruby and therefore get verbatim line-preserving treatment.
func WithRubyFilterPredicate(pred func(filterType string) bool) Option {
	return func(e *RubyExtractor) {
		e.isRubyFilter = pred
	}
}

// RubyExtractor extracts Ruby code from HAML document trees. A single
// extractor may be used for any number of Extract calls, concurrently;
// all mutable state lives in a per-call value.
type RubyExtractor struct {
	isRubyFilter func(filterType string) bool
}

func New(opts ...Option) *RubyExtractor {
	e := &RubyExtractor{
		isRubyFilter: func(filterType string) bool { return filterType == "ruby" },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract walks the document tree and produces the synthetic script and its
// line map. Extraction is all-or-nothing: on error no partial result is
// returned. The same document always yields the same result.
func (e *RubyExtractor) Extract(ctx context.Context, doc *ast.Document) (*Source, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("document has no root node")
	}

	st := &state{}

	w := walker.New()
	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		st.reset()
		return descend()
	})
	w.Handle(ast.NodePlain, func(node *ast.Node, descend walker.Continuation) error {
		st.addPlaceholder("", node.Line)
		return nil
	})
	w.Handle(ast.NodeTag, e.visitTag(st))
	w.Handle(ast.NodeScript, e.visitScript(st))
	w.Handle(ast.NodeSilentScript, e.visitScript(st))
	w.Handle(ast.NodeComment, func(node *ast.Node, descend walker.Continuation) error {
		st.addLine(rewriteComment(node.Text), node.Line, fromNode)
		return nil
	})
	w.Handle(ast.NodeFilter, e.visitFilter(st))

	if err := w.Walk(doc.Root); err != nil {
		return nil, err
	}

	script := strings.Join(st.chunks, "\n")
	zerolog.Ctx(ctx).Debug().
		Str("file", doc.Filename).
		Int("lines", st.lineMap.Len()).
		Msg("extracted ruby source")

	return &Source{Script: script, LineMap: st.lineMap}, nil
}

// wsCollapse flattens a multi-line Ruby expression onto one line.
var wsCollapse = regexp.MustCompile(`\s*\n\s*`)

func (e *RubyExtractor) visitTag(st *state) walker.Hook {
	return func(node *ast.Node, descend walker.Continuation) error {
		// Emit dummy references to code executed in the attribute list so
		// the linter sees the variables it uses. Attributes can be either a
		// literal hash or a method call, so wrap them in a merge call to
		// make both forms uniform expressions.
		for _, attrSource := range node.DynamicAttributeSources {
			code := strings.TrimSpace(wsCollapse.ReplaceAllString(attrSource, " "))
			st.addLine("{}.merge("+code+")", node.Line, fromNode)
		}

		if hash, ok := reconstructStaticHash(node); ok {
			st.addLine(hash, node.Line, fromNode)
		}

		st.addPlaceholder(node.TagName, node.Line)

		if code := strings.TrimSpace(node.Script); code != "" {
			st.addLine(code, node.Line, fromNode)
		}

		if err := descend(); err != nil {
			return err
		}

		st.addPlaceholder(node.TagName+"/", node.Line)
		return nil
	}
}

func (e *RubyExtractor) visitScript(st *state) walker.Hook {
	return func(node *ast.Node, descend walker.Continuation) error {
		code := strings.TrimSpace(node.Text)
		st.addLine(code, node.Line, fromNode)

		opensBlock := ruby.AnonymousBlock(code) || ruby.StartsBlock(code)
		if opensBlock {
			st.indentLevel++
		}

		if err := descend(); err != nil {
			return err
		}

		if opensBlock {
			st.indentLevel--
			st.addLine("end", node.Line, fromNode)
		}
		return nil
	}
}

func (e *RubyExtractor) visitFilter(st *state) walker.Hook {
	return func(node *ast.Node, descend walker.Continuation) error {
		if e.isRubyFilter(node.FilterType) {
			// The filter body is Ruby already. Keep every line, blanks
			// included, so the script's lines match the document's exactly.
			for i, line := range strings.Split(node.Text, "\n") {
				st.addRawLine(line, node.Line+i+1)
			}
			return nil
		}

		st.addPlaceholder(node.FilterType, node.Line)
		for _, interp := range interpolations(node.Text) {
			st.addLine(interp.code, node.Line+interp.lineOffset, fromRawLine)
		}
		return nil
	}
}

var (
	commentSolidLine  = regexp.MustCompile(`\n(\S)`)
	commentPaddedLine = regexp.MustCompile(`\n(\s)`)
)

// rewriteComment turns a (possibly multi-line) HAML comment body into Ruby
// line comments. Lines that start with non-whitespace get "# " so the
// marker is always followed by a space; lines that start with whitespace
// already have their separator.
func rewriteComment(text string) string {
	text = commentSolidLine.ReplaceAllString(text, "\n# $1")
	text = commentPaddedLine.ReplaceAllString(text, "\n#$1")
	return "#" + text
}

const (
	fromNode    = true
	fromRawLine = false
)

// state is the mutable bookkeeping of one in-flight extraction. It is owned
// by exactly one Extract call and must never be shared or reentered.
type state struct {
	// chunks are emitted statements; a chunk may span several physical
	// lines (multi-line comments), each of which gets its own map entry.
	chunks      []string
	indentLevel int
	// placeholderCount numbers unannotated placeholder statements so every
	// one of them is unique.
	placeholderCount int
	lineMap          *sourcemap.Map
}

func (st *state) reset() {
	st.chunks = nil
	st.indentLevel = 0
	st.placeholderCount = 0
	st.lineMap = sourcemap.New()
}

// addLine appends a statement and records one map entry per physical line.
// Empty statements are dropped. Statements driven by a tree node that start
// with a block-continuation keyword (else, rescue, ...) are outdented one
// level so they align with their block opener.
func (st *state) addLine(code string, originalLine int, nodeDriven bool) {
	if code == "" {
		return
	}

	level := st.indentLevel
	if nodeDriven && ruby.MidBlock(code) {
		level--
	}
	if level < 0 {
		level = 0
	}

	st.append(strings.Repeat("  ", level)+code, originalLine)
}

// addRawLine appends one verbatim line from a Ruby filter body. Blank lines
// are preserved and no indentation or keyword adjustment is applied: the
// filter body's own layout is authoritative.
func (st *state) addRawLine(line string, originalLine int) {
	st.append(line, originalLine)
}

// addPlaceholder emits an opaque statement that occupies a mapped line
// without exposing document content to the linter. Unannotated placeholders
// are uniquely numbered.
func (st *state) addPlaceholder(annotation string, originalLine int) {
	if annotation == "" {
		st.placeholderCount++
		annotation = fmt.Sprintf("%d", st.placeholderCount)
	}
	st.addLine("puts # "+annotation, originalLine, fromNode)
}

func (st *state) append(chunk string, originalLine int) {
	st.chunks = append(st.chunks, chunk)
	for i := 0; i <= strings.Count(chunk, "\n"); i++ {
		st.lineMap.Add(originalLine)
	}
}
