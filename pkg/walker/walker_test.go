package walker_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/hamlint/pkg/ast"
	"github.com/walteh/hamlint/pkg/walker"
)

func TestWalk_DepthFirstOrder(t *testing.T) {
	tree := &ast.Node{
		Type: ast.NodeRoot,
		Children: []*ast.Node{
			{Type: ast.NodeTag, Line: 1, TagName: "a", Children: []*ast.Node{
				{Type: ast.NodePlain, Line: 2, Text: "one"},
				{Type: ast.NodePlain, Line: 3, Text: "two"},
			}},
			{Type: ast.NodePlain, Line: 4, Text: "three"},
		},
	}

	var visited []int
	w := walker.New()
	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		return descend()
	})
	w.Handle(ast.NodeTag, func(node *ast.Node, descend walker.Continuation) error {
		visited = append(visited, node.Line)
		return descend()
	})
	w.Handle(ast.NodePlain, func(node *ast.Node, descend walker.Continuation) error {
		visited = append(visited, node.Line)
		return nil
	})

	require.NoError(t, w.Walk(tree))
	assert.Equal(t, []int{1, 2, 3, 4}, visited)
}

func TestWalk_PostHookRunsAfterDescent(t *testing.T) {
	tree := &ast.Node{
		Type: ast.NodeRoot,
		Children: []*ast.Node{
			{Type: ast.NodePlain, Line: 1},
		},
	}

	var order []string
	w := walker.New()
	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		order = append(order, "root")
		return descend()
	})
	w.HandleAfter(ast.NodeRoot, func(node *ast.Node) error {
		order = append(order, "root-after")
		return nil
	})
	w.Handle(ast.NodePlain, func(node *ast.Node, descend walker.Continuation) error {
		order = append(order, "plain")
		return nil
	})

	require.NoError(t, w.Walk(tree))
	assert.Equal(t, []string{"root", "plain", "root-after"}, order)
}

func TestWalk_SkipsSubtreeWhenContinuationNotInvoked(t *testing.T) {
	tree := &ast.Node{
		Type: ast.NodeRoot,
		Children: []*ast.Node{
			{Type: ast.NodeComment, Line: 1, Children: []*ast.Node{
				{Type: ast.NodePlain, Line: 2},
			}},
		},
	}

	var visited []string
	w := walker.New()
	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		return descend()
	})
	w.Handle(ast.NodeComment, func(node *ast.Node, descend walker.Continuation) error {
		visited = append(visited, "comment")
		return nil
	})
	w.Handle(ast.NodePlain, func(node *ast.Node, descend walker.Continuation) error {
		visited = append(visited, "plain")
		return nil
	})

	require.NoError(t, w.Walk(tree))
	assert.Equal(t, []string{"comment"}, visited)
}

func TestWalk_UnregisteredKindFails(t *testing.T) {
	tree := &ast.Node{
		Type: ast.NodeRoot,
		Children: []*ast.Node{
			{Type: ast.NodeFilter, Line: 7},
		},
	}

	w := walker.New()
	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		return descend()
	})

	err := w.Walk(tree)
	require.Error(t, err)

	var structural *walker.StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, ast.NodeFilter, structural.Type)
	assert.Equal(t, 7, structural.Line)
}

func TestWalk_NilNodesFail(t *testing.T) {
	w := walker.New()
	require.Error(t, w.Walk(nil))

	w.Handle(ast.NodeRoot, func(node *ast.Node, descend walker.Continuation) error {
		return descend()
	})
	tree := &ast.Node{Type: ast.NodeRoot, Children: []*ast.Node{nil}}

	var structural *walker.StructuralError
	err := w.Walk(tree)
	require.Error(t, err)
	require.True(t, errors.As(err, &structural))
}
