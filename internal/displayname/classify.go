package displayname

import (
	"github.com/standardbeagle/displayname/internal/syntax"
)

// IsClassComponent reports whether the class body declares an instance
// method named render. Getters count; fields, static and #private members
// do not.
func IsClassComponent(f *syntax.File, n *syntax.Node) bool {
	if !syntax.IsClass(n) {
		return false
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return false
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil || member.Kind() != syntax.KindMethodDefinition {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || name.Kind() != syntax.KindPropertyIdentifier {
			continue
		}
		if f.Text(name) == "render" && !syntax.IsStatic(member) {
			return true
		}
	}
	return false
}

// ReturnsJSX searches the function body for a JSX element. Nested functions
// and classes are not searched and the search ends at the first hit.
func ReturnsJSX(n *syntax.Node) bool {
	body := n.ChildByFieldName("body")
	if body == nil {
		return false
	}

	found := false
	syntax.Walk(body, syntax.Visitor{
		Enter: func(c *syntax.Node) syntax.Action {
			if syntax.IsFunctionLike(c) || syntax.IsClass(c) {
				return syntax.SkipChildren
			}
			if syntax.IsJSXOpening(c) {
				found = true
				return syntax.Stop
			}
			return syntax.Continue
		},
	})
	return found
}

// IsFunctionComponent reports whether n is a function that renders JSX and
// has a name to hang the annotation on. Function expressions must be bound
// to a variable or be the value of `export default`.
func IsFunctionComponent(n *syntax.Node) bool {
	if !syntax.IsFunction(n) || !ReturnsJSX(n) {
		return false
	}
	if syntax.IsFunctionExpression(n) {
		return isBound(n)
	}
	return true
}

// isBound reports whether an expression has a binding target
func isBound(n *syntax.Node) bool {
	return syntax.IsDefaultExport(n.Parent()) || enclosingDeclarator(n) != nil
}

// enclosingDeclarator finds the variable declarator an expression is
// assigned through, without leaving the statement or scope it appears in.
// Declarators binding a destructuring pattern do not count.
func enclosingDeclarator(n *syntax.Node) *syntax.Node {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch {
		case syntax.IsVariableDeclarator(cur):
			name := cur.ChildByFieldName("name")
			if name == nil || !syntax.IsIdentifier(name) {
				return nil
			}
			return cur
		case syntax.IsBlock(cur), syntax.IsFunctionLike(cur), syntax.IsClass(cur),
			cur.Kind() == syntax.KindClassBody:
			return nil
		}
	}
	return nil
}

func kindOf(n *syntax.Node) Kind {
	switch {
	case syntax.IsClassDeclaration(n):
		return KindClass
	case syntax.IsClassExpression(n):
		return KindClassExpression
	case syntax.IsArrowFunction(n):
		return KindArrow
	case syntax.IsFunctionExpression(n):
		return KindFunctionExpression
	}
	return KindFunction
}
