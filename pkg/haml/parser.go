// Package haml parses HAML source into the document tree consumed by the
// extractor. It is an indentation-driven line parser covering the subset of
// HAML that carries embedded Ruby: tags with dynamic attribute hashes and
// inline scripts, script and silent-script lines, comments, filters, and
// plain text.
package haml

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/hamlint/pkg/ast"
	"github.com/walteh/hamlint/pkg/ruby"
	"gitlab.com/tozd/go/errors"
)

// Parse builds a document tree from HAML source. Line numbers on the
// returned nodes are 1-based.
func Parse(ctx context.Context, content []byte, filename string) (*ast.Document, error) {
	root := &ast.Node{Type: ast.NodeRoot, Line: 0}
	doc := &ast.Document{Filename: filename, Root: root}

	p := &parser{lines: strings.Split(string(content), "\n")}

	type frame struct {
		indent int
		node   *ast.Node
	}
	stack := []frame{{indent: -1, node: root}}

	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		lineNo := p.pos + 1

		if strings.TrimSpace(raw) == "" {
			p.pos++
			continue
		}

		indent, err := indentOf(raw, lineNo)
		if err != nil {
			return nil, err
		}

		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node

		node, err := p.parseLine(raw[indent:], indent, lineNo)
		if err != nil {
			return nil, err
		}

		// Block-continuation scripts (`- else`, `- rescue`, ...) written at
		// the opener's indentation belong inside the opener's block: nest
		// them under the preceding script node so a single `end` closes the
		// whole construct.
		if isScript(node) && ruby.MidBlock(node.Text) {
			if opener := trailingBlockOpener(parent); opener != nil {
				parent = opener
			}
		}
		parent.AppendChild(node)

		switch node.Type {
		case ast.NodeTag, ast.NodeScript, ast.NodeSilentScript:
			stack = append(stack, frame{indent: indent, node: node})
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", filename).
		Int("lines", len(p.lines)).
		Msg("parsed haml document")

	return doc, nil
}

func isScript(node *ast.Node) bool {
	return node.Type == ast.NodeScript || node.Type == ast.NodeSilentScript
}

// trailingBlockOpener returns parent's last child if it is a script node
// that opened a block which is still accepting continuation clauses.
func trailingBlockOpener(parent *ast.Node) *ast.Node {
	if len(parent.Children) == 0 {
		return nil
	}
	last := parent.Children[len(parent.Children)-1]
	if !isScript(last) {
		return nil
	}
	if ruby.StartsBlock(last.Text) || ruby.AnonymousBlock(last.Text) {
		return last
	}
	return nil
}

type parser struct {
	lines []string
	pos   int
}

// parseLine consumes the line at p.pos (and any continuation or block lines
// that belong to it) and returns the resulting node.
func (p *parser) parseLine(content string, indent, lineNo int) (*ast.Node, error) {
	switch {
	case strings.HasPrefix(content, "-#"):
		text := strings.TrimPrefix(content, "-#")
		text = strings.TrimPrefix(text, " ")
		p.pos++
		if block := p.blockText(indent, false); block != "" {
			if text != "" {
				text += "\n" + block
			} else {
				text = block
			}
		}
		return &ast.Node{Type: ast.NodeComment, Line: lineNo, Text: text}, nil

	case strings.HasPrefix(content, ":"):
		name := strings.TrimRight(content[1:], " \t")
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, errors.Errorf("line %d: malformed filter declaration %q", lineNo, content)
		}
		p.pos++
		text := p.blockText(indent, true)
		return &ast.Node{Type: ast.NodeFilter, Line: lineNo, FilterType: name, Text: text}, nil

	case strings.HasPrefix(content, "%"), strings.HasPrefix(content, "."), strings.HasPrefix(content, "#"):
		return p.parseTag(content, lineNo)

	case strings.HasPrefix(content, "-"):
		code, err := p.joinScript(strings.TrimSpace(content[1:]), lineNo)
		if err != nil {
			return nil, err
		}
		return &ast.Node{Type: ast.NodeSilentScript, Line: lineNo, Text: code}, nil

	case strings.HasPrefix(content, "="), strings.HasPrefix(content, "~"):
		code, err := p.joinScript(strings.TrimSpace(content[1:]), lineNo)
		if err != nil {
			return nil, err
		}
		return &ast.Node{Type: ast.NodeScript, Line: lineNo, Text: code}, nil

	case strings.HasPrefix(content, "\\"):
		p.pos++
		return &ast.Node{Type: ast.NodePlain, Line: lineNo, Text: content[1:]}, nil

	default:
		// Includes `/` HTML comments: they render as markup, so they get
		// the same placeholder treatment as prose.
		p.pos++
		return &ast.Node{Type: ast.NodePlain, Line: lineNo, Text: content}, nil
	}
}

// joinScript consumes a script statement, folding `,`-continued lines onto
// one statement the way HAML's own parser does.
func (p *parser) joinScript(code string, lineNo int) (string, error) {
	p.pos++
	for strings.HasSuffix(code, ",") {
		if p.pos >= len(p.lines) {
			return "", errors.Errorf("line %d: script continues past end of file", lineNo)
		}
		code += " " + strings.TrimSpace(p.lines[p.pos])
		p.pos++
	}
	return code, nil
}

// blockText collects the indented block belonging to the node that starts
// at ownerIndent, dedented by one level. Blank interior lines are kept when
// keepBlanks is set (filters); trailing blanks are always dropped.
func (p *parser) blockText(ownerIndent int, keepBlanks bool) string {
	dedent := ownerIndent + 2
	var collected []string

	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		if strings.TrimSpace(raw) == "" {
			collected = append(collected, "")
			p.pos++
			continue
		}
		indent, err := indentOf(raw, p.pos+1)
		if err != nil || indent <= ownerIndent {
			break
		}
		if indent < dedent {
			collected = append(collected, raw[indent:])
		} else {
			collected = append(collected, raw[dedent:])
		}
		p.pos++
	}

	for len(collected) > 0 && collected[len(collected)-1] == "" {
		collected = collected[:len(collected)-1]
	}
	if !keepBlanks {
		kept := collected[:0]
		for _, line := range collected {
			if line != "" {
				kept = append(kept, line)
			}
		}
		collected = kept
	}
	return strings.Join(collected, "\n")
}

func indentOf(raw string, lineNo int) (int, error) {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ' ':
		case '\t':
			return 0, errors.Errorf("line %d: tabs are not allowed for indentation", lineNo)
		default:
			return i, nil
		}
	}
	return len(raw), nil
}

var tagNamePattern = regexp.MustCompile(`^%([A-Za-z][A-Za-z0-9:_-]*)`)
var cssShortcutPattern = regexp.MustCompile(`^[.#][A-Za-z0-9_-]+`)

// parseTag parses a tag line: `%name`, `.class` / `#id` shortcuts, an
// optional `{...}` attribute hash (possibly spanning lines), optional
// modifiers, and either inline text or an inline `=` script.
func (p *parser) parseTag(content string, lineNo int) (*ast.Node, error) {
	node := &ast.Node{Type: ast.NodeTag, Line: lineNo, TagName: "div"}

	rest := content
	if m := tagNamePattern.FindStringSubmatch(rest); m != nil {
		node.TagName = m[1]
		rest = rest[len(m[0]):]
	} else if strings.HasPrefix(rest, "%") {
		return nil, errors.Errorf("line %d: invalid tag name in %q", lineNo, content)
	}

	for {
		m := cssShortcutPattern.FindString(rest)
		if m == "" {
			break
		}
		rest = rest[len(m):]
	}

	if strings.HasPrefix(rest, "{") {
		source, remainder, err := p.consumeAttributeHash(rest, lineNo)
		if err != nil {
			return nil, err
		}
		if staticHash(source) {
			node.StaticHashSource = source
		} else {
			node.DynamicAttributeSources = append(node.DynamicAttributeSources, source)
		}
		rest = remainder
	}

	// Self-close and whitespace-removal markers carry no Ruby.
	rest = strings.TrimLeft(rest, "/<>")

	p.pos++
	switch {
	case strings.HasPrefix(rest, "="), strings.HasPrefix(rest, "~"):
		p.pos--
		code, err := p.joinScript(strings.TrimSpace(rest[1:]), lineNo)
		if err != nil {
			return nil, err
		}
		node.Script = code
	case strings.TrimSpace(rest) != "":
		node.AppendChild(&ast.Node{
			Type: ast.NodePlain,
			Line: lineNo,
			Text: strings.TrimSpace(rest),
		})
	}

	return node, nil
}

// consumeAttributeHash reads a `{...}` attribute hash starting at rest,
// pulling in further physical lines until the braces balance. It returns
// the hash source (braces included, newlines intact) and whatever follows
// the closing brace on its line.
func (p *parser) consumeAttributeHash(rest string, lineNo int) (string, string, error) {
	var source strings.Builder
	depth := 0
	line := rest
	linePos := p.pos

	for {
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					source.WriteString(line[:i+1])
					p.pos = linePos
					return source.String(), line[i+1:], nil
				}
			}
		}
		source.WriteString(line)
		source.WriteString("\n")
		linePos++
		if linePos >= len(p.lines) {
			return "", "", errors.Errorf("line %d: unterminated attribute hash", lineNo)
		}
		line = p.lines[linePos]
	}
}

// staticPairPattern matches one `'key' => value` style pair whose key and
// value are both literals. HAML's parser folds hashes made entirely of such
// pairs into static attributes; we mirror that so the extractor's
// reconstruction path sees the same shape real parsers produce.
var staticPairPattern = regexp.MustCompile(
	`^\s*(:[A-Za-z_][A-Za-z0-9_]*|'[^']*'|"[^"]*")\s*=>\s*('[^']*'|"[^"]*"|-?[0-9]+(\.[0-9]+)?|true|false|nil)\s*$`)

func staticHash(source string) bool {
	inner := strings.TrimSpace(source)
	if !strings.HasPrefix(inner, "{") || !strings.HasSuffix(inner, "}") {
		return false
	}
	inner = inner[1 : len(inner)-1]
	if strings.TrimSpace(inner) == "" {
		return false
	}
	if strings.Contains(inner, "#{") || strings.Contains(inner, "{") {
		return false
	}
	for _, pair := range strings.Split(inner, ",") {
		if !staticPairPattern.MatchString(strings.ReplaceAll(pair, "\n", " ")) {
			return false
		}
	}
	return true
}
