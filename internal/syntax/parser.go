package syntax

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// ErrSyntax is the underlying error of every ParseError produced here
var ErrSyntax = errors.New("syntax error")

// Parser owns one tree-sitter parser per language. Grammars are set up lazily
// on first use. A Parser is not safe for concurrent use; give each worker its own.
type Parser struct {
	parsers  map[Language]*tree_sitter.Parser
	lazyInit map[Language]func() *tree_sitter.Language
}

// NewParser creates a parser with lazy grammar initialization
func NewParser() *Parser {
	return &Parser{
		parsers: make(map[Language]*tree_sitter.Parser),
		lazyInit: map[Language]func() *tree_sitter.Language{
			JavaScript: func() *tree_sitter.Language {
				return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
			},
			TypeScript: func() *tree_sitter.Language {
				return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
			},
			TSX: func() *tree_sitter.Language {
				return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
			},
		},
	}
}

func (p *Parser) parserFor(lang Language) (*tree_sitter.Parser, error) {
	if parser, ok := p.parsers[lang]; ok {
		return parser, nil
	}
	setup, ok := p.lazyInit[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(setup()); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set %s grammar: %w", lang, err)
	}
	p.parsers[lang] = parser
	return parser, nil
}

// Parse builds a syntax tree for source. Sources with syntax errors are
// rejected with a ParseError pointing at the first error node.
func (p *Parser) Parse(lang Language, source []byte) (*File, error) {
	if lang == "" {
		lang = JavaScript
	}
	parser, err := p.parserFor(lang)
	if err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree for %s source", lang)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := firstSyntaxError(root, source)
		tree.Close()
		return nil, perr
	}

	return newFile(lang, source, tree), nil
}

// Close releases every tree-sitter parser
func (p *Parser) Close() {
	for lang, parser := range p.parsers {
		parser.Close()
		delete(p.parsers, lang)
	}
}

func firstSyntaxError(root *Node, source []byte) *dnerrors.ParseError {
	var bad *Node
	Walk(root, Visitor{
		Enter: func(n *Node) Action {
			if n.IsError() || n.IsMissing() {
				bad = n
				return Stop
			}
			if !n.HasError() {
				return SkipChildren
			}
			return Continue
		},
	})
	if bad == nil {
		bad = root
	}

	pos := bad.StartPosition()
	token := bad.Kind()
	if !bad.IsMissing() {
		token = bad.Utf8Text(source)
		if len(token) > 20 {
			token = token[:20]
		}
	}
	return dnerrors.NewParseError("", int(pos.Row)+1, int(pos.Column)+1, token, ErrSyntax)
}
