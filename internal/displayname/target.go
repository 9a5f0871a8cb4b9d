package displayname

import (
	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/internal/syntax"
)

// defaultUIDHint seeds the binding generated for anonymous default exports
const defaultUIDHint = "default"

// resolveTarget returns the identifier the component value is bound to.
// Anonymous default exports get a generated binding: the declaration is
// rewritten to `_default = <declaration>` and `var _default;` is declared.
func resolveTarget(f *syntax.File, n *syntax.Node) (string, error) {
	switch {
	case syntax.IsClassDeclaration(n):
		if name := n.ChildByFieldName("name"); name != nil {
			return f.Text(name), nil
		}
		return "", unsupported(n, "class declaration without a name")

	case syntax.IsDefaultExport(n.Parent()):
		if name := n.ChildByFieldName("name"); name != nil {
			return f.Text(name), nil
		}
		uid := f.GenerateDeclaredUID(defaultUIDHint)
		f.Replace(n, syntax.Assignment(uid, f.Text(n)))
		return uid, nil

	case syntax.IsFunctionExpression(n), syntax.IsClassExpression(n):
		decl := enclosingDeclarator(n)
		if decl == nil {
			return "", unsupported(n, "no enclosing variable declarator")
		}
		return f.Text(decl.ChildByFieldName("name")), nil

	case syntax.IsFunctionDeclaration(n):
		if name := n.ChildByFieldName("name"); name != nil {
			return f.Text(name), nil
		}
		return "", unsupported(n, "function declaration without a name")
	}
	return "", unsupported(n, "not a class or function")
}

func unsupported(n *syntax.Node, reason string) error {
	pos := n.StartPosition()
	return dnerrors.NewUnsupportedNodeError(n.Kind(), int(pos.Row)+1, int(pos.Column)+1, reason)
}
