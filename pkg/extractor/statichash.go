package extractor

import (
	"github.com/walteh/hamlint/pkg/ast"
)

// reconstructStaticHash recovers an attribute hash the parser folded into
// static form. The HAML parser converts hashrocket-style attribute hashes
// whose keys are all literal strings or symbols into static attributes and
// drops them from the dynamic attribute sources, which would hide that code
// from the linter entirely. When that happened, normalize the recorded hash
// source onto one line and hand it back for emission.
//
// Never fires when any dynamic source survived, otherwise the same code
// would be emitted twice.
func reconstructStaticHash(node *ast.Node) (string, bool) {
	if node.StaticHashSource == "" || len(node.DynamicAttributeSources) > 0 {
		return "", false
	}
	return wsCollapse.ReplaceAllString(node.StaticHashSource, " "), true
}
