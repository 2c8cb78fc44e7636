package ast

// NodeType identifies the kind of a document tree node. The set is closed:
// the parser only ever produces the kinds below, and the walker treats any
// other value as a structural failure.
type NodeType int

const (
	NodeRoot NodeType = iota
	NodePlain
	NodeTag
	NodeScript
	NodeSilentScript
	NodeComment
	NodeFilter
)

func (t NodeType) String() string {
	switch t {
	case NodeRoot:
		return "root"
	case NodePlain:
		return "plain"
	case NodeTag:
		return "tag"
	case NodeScript:
		return "script"
	case NodeSilentScript:
		return "silent_script"
	case NodeComment:
		return "comment"
	case NodeFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Node is a single node in a parsed HAML document tree. Line numbers are
// 1-based. Only the fields relevant to a node's type are populated.
type Node struct {
	Type     NodeType
	Line     int
	Children []*Node

	// Text holds plain text, the statement of a script node, the body of a
	// comment, or the raw content of a filter block.
	Text string

	// Tag fields.
	TagName string
	// Script is the inline script attached to a tag (`%p= user.name`).
	Script string
	// DynamicAttributeSources are the raw Ruby sources of each dynamic
	// attribute hash attached to a tag, in document order.
	DynamicAttributeSources []string
	// StaticHashSource is the raw source of an attribute hash the parser
	// folded into static form. It is recorded even when the hash was also
	// kept dynamic, so consumers must check DynamicAttributeSources first.
	StaticHashSource string

	// FilterType names the filter of a filter node (`:javascript` → "javascript").
	FilterType string
}

// Document is a parsed HAML source file. The Root node has type NodeRoot,
// line 0, and owns all top-level nodes as children.
type Document struct {
	Filename string
	Root     *Node
}

// AppendChild attaches child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}
