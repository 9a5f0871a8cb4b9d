package displayname

import (
	"github.com/standardbeagle/displayname/internal/syntax"
)

const displayNameProperty = "displayName"

// blockStatement finds the statement holding decl that sits directly in a
// statement list, decl itself included
func blockStatement(decl *syntax.Node) *syntax.Node {
	return syntax.FindAncestor(decl, func(n *syntax.Node) bool {
		return syntax.IsBlock(n.Parent())
	})
}

// annotate inserts `target.displayName = "name";` after the statement
// holding decl. It reports false when decl is not inside a statement list.
func annotate(f *syntax.File, decl *syntax.Node, target, name string) bool {
	stmt := blockStatement(decl)
	if stmt == nil {
		return false
	}
	f.InsertStatementAfter(stmt, syntax.MemberAssignment(target, displayNameProperty, syntax.StringLiteral(name)))
	return true
}
