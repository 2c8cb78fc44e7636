// Package walker drives depth-first traversal of a HAML document tree,
// dispatching each node to a hook registered for its type. Traversal is
// strictly sequential; emission order downstream depends on it.
package walker

import (
	"fmt"

	"github.com/walteh/hamlint/pkg/ast"
)

// StructuralError reports a tree that cannot be traversed: a node type with
// no registered hook, or a child set that cannot be descended into.
type StructuralError struct {
	Type   ast.NodeType
	Line   int
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("line %d: %s node: %s", e.Line, e.Type, e.Reason)
}

// Continuation descends into the current node's children in document order.
// A hook that never invokes it skips the subtree.
type Continuation func() error

// Hook handles one node. It may call descend zero or one times.
type Hook func(node *ast.Node, descend Continuation) error

// PostHook runs after a node's hook (and any descent it performed) returns.
type PostHook func(node *ast.Node) error

// Walker dispatches nodes to hooks by node type.
type Walker struct {
	pre  map[ast.NodeType]Hook
	post map[ast.NodeType]PostHook
}

func New() *Walker {
	return &Walker{
		pre:  make(map[ast.NodeType]Hook),
		post: make(map[ast.NodeType]PostHook),
	}
}

// Handle registers the hook invoked for nodes of the given type.
func (w *Walker) Handle(t ast.NodeType, hook Hook) {
	w.pre[t] = hook
}

// HandleAfter registers a hook invoked after a node's main hook returns.
func (w *Walker) HandleAfter(t ast.NodeType, hook PostHook) {
	w.post[t] = hook
}

// Walk visits node and, via the continuation handed to its hook, the node's
// descendants. Any error aborts the traversal immediately.
func (w *Walker) Walk(node *ast.Node) error {
	if node == nil {
		return &StructuralError{Reason: "nil node"}
	}

	hook, ok := w.pre[node.Type]
	if !ok {
		return &StructuralError{Type: node.Type, Line: node.Line, Reason: "no handler registered"}
	}

	descend := func() error {
		for _, child := range node.Children {
			if child == nil {
				return &StructuralError{Type: node.Type, Line: node.Line, Reason: "nil child"}
			}
			if err := w.Walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := hook(node, descend); err != nil {
		return err
	}

	if post, ok := w.post[node.Type]; ok {
		if err := post(node); err != nil {
			return err
		}
	}

	return nil
}
