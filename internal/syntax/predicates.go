package syntax

// Node kinds shared by the javascript, typescript and tsx grammars.
const (
	KindProgram            = "program"
	KindStatementBlock     = "statement_block"
	KindExportStatement    = "export_statement"
	KindVariableDeclarator = "variable_declarator"
	KindClassDeclaration   = "class_declaration"
	KindAbstractClass      = "abstract_class_declaration"
	KindClassExpression    = "class"
	KindClassBody          = "class_body"
	KindMethodDefinition   = "method_definition"
	KindFunctionDecl       = "function_declaration"
	KindGeneratorDecl      = "generator_function_declaration"
	KindFunctionExpr       = "function_expression"
	KindLegacyFunctionExpr = "function"
	KindGeneratorExpr      = "generator_function"
	KindArrowFunction      = "arrow_function"
	KindIdentifier         = "identifier"
	KindTypeIdentifier     = "type_identifier"
	KindPropertyIdentifier = "property_identifier"
	KindJSXOpening         = "jsx_opening_element"
	KindJSXSelfClosing     = "jsx_self_closing_element"
)

// IsBlock reports whether n is a statement-list container
func IsBlock(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case KindProgram, KindStatementBlock:
		return true
	}
	return false
}

// IsFunctionDeclaration reports named function statements
func IsFunctionDeclaration(n *Node) bool {
	if n == nil || !n.IsNamed() {
		return false
	}
	switch n.Kind() {
	case KindFunctionDecl, KindGeneratorDecl:
		return true
	}
	return false
}

// IsFunctionExpression reports function expressions and arrow functions
func IsFunctionExpression(n *Node) bool {
	if n == nil || !n.IsNamed() {
		return false
	}
	switch n.Kind() {
	case KindFunctionExpr, KindLegacyFunctionExpr, KindGeneratorExpr, KindArrowFunction:
		return true
	}
	return false
}

// IsArrowFunction reports arrow functions
func IsArrowFunction(n *Node) bool {
	return n != nil && n.IsNamed() && n.Kind() == KindArrowFunction
}

// IsFunction reports any function declaration or expression
func IsFunction(n *Node) bool {
	return IsFunctionDeclaration(n) || IsFunctionExpression(n)
}

// IsFunctionLike reports every node that opens a new function scope,
// including object and class methods
func IsFunctionLike(n *Node) bool {
	if IsFunction(n) {
		return true
	}
	return n != nil && n.IsNamed() && n.Kind() == KindMethodDefinition
}

// IsClassDeclaration reports class statements
func IsClassDeclaration(n *Node) bool {
	if n == nil || !n.IsNamed() {
		return false
	}
	switch n.Kind() {
	case KindClassDeclaration, KindAbstractClass:
		return true
	}
	return false
}

// IsClassExpression reports class expressions
func IsClassExpression(n *Node) bool {
	return n != nil && n.IsNamed() && n.Kind() == KindClassExpression
}

// IsClass reports class declarations and expressions
func IsClass(n *Node) bool {
	return IsClassDeclaration(n) || IsClassExpression(n)
}

// IsIdentifier reports binding identifiers
func IsIdentifier(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case KindIdentifier, KindTypeIdentifier:
		return true
	}
	return false
}

// IsVariableDeclarator reports `name = value` parts of var/let/const
func IsVariableDeclarator(n *Node) bool {
	return n != nil && n.Kind() == KindVariableDeclarator
}

// IsDefaultExport reports `export default ...` statements
func IsDefaultExport(n *Node) bool {
	if n == nil || n.Kind() != KindExportStatement {
		return false
	}
	return hasToken(n, "default")
}

// IsJSXOpening reports an element opening tag or a self-closing element.
// Fragment openings (`<>`) carry no name and do not count.
func IsJSXOpening(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case KindJSXSelfClosing:
		return true
	case KindJSXOpening:
		return n.ChildByFieldName("name") != nil
	}
	return false
}

// IsStatic reports a `static` modifier on a class member
func IsStatic(n *Node) bool {
	return hasToken(n, "static")
}

// hasToken looks for an anonymous child token of the given kind
func hasToken(n *Node, token string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}
