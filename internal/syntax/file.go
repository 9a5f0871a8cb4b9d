package syntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// edit is a pending change against the original source. Inserts have
// start == end.
type edit struct {
	start uint
	end   uint
	text  string
	seq   int
}

func (e edit) isInsert() bool { return e.start == e.end }

// File is a parsed source unit together with the edits recorded against it.
// Nodes always refer to the original source; edits are applied once by Output.
type File struct {
	Language Language

	source []byte
	tree   *tree_sitter.Tree
	edits  []edit
	seq    int

	idents map[string]struct{}
	uids   map[string]struct{}
}

func newFile(lang Language, source []byte, tree *tree_sitter.Tree) *File {
	return &File{
		Language: lang,
		source:   source,
		tree:     tree,
		uids:     make(map[string]struct{}),
	}
}

// Root returns the program node
func (f *File) Root() *Node {
	return f.tree.RootNode()
}

// Source returns the original source bytes
func (f *File) Source() []byte {
	return f.source
}

// Text returns the source text of n
func (f *File) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(f.source)
}

// Close releases the syntax tree
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Changed reports whether any edit was recorded
func (f *File) Changed() bool {
	return len(f.edits) > 0
}

func (f *File) record(start, end uint, text string) {
	f.edits = append(f.edits, edit{start: start, end: end, text: text, seq: f.seq})
	f.seq++
}

// Replace swaps the source text of n for code
func (f *File) Replace(n *Node, code string) {
	f.record(n.StartByte(), n.EndByte(), code)
}

// InsertStatementAfter places code on a new line after stmt, indented like
// stmt. A trailing line comment stays attached to stmt.
func (f *File) InsertStatementAfter(stmt *Node, code string) {
	pos := stmt.EndByte()
	if eol, ok := f.restOfLineIsTrivia(pos); ok {
		pos = eol
	}
	f.record(pos, pos, "\n"+f.indentOf(stmt.StartByte())+code)
}

// restOfLineIsTrivia returns the end of the line starting at pos when only
// whitespace or a line comment follows.
func (f *File) restOfLineIsTrivia(pos uint) (uint, bool) {
	i := int(pos)
	for i < len(f.source) && (f.source[i] == ' ' || f.source[i] == '\t') {
		i++
	}
	if i+1 < len(f.source) && f.source[i] == '/' && f.source[i+1] == '/' {
		for i < len(f.source) && f.source[i] != '\n' && f.source[i] != '\r' {
			i++
		}
	}
	if i == len(f.source) || f.source[i] == '\n' || f.source[i] == '\r' {
		return uint(i), true
	}
	return 0, false
}

func (f *File) indentOf(pos uint) string {
	start := int(pos)
	for start > 0 && f.source[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(f.source) && (f.source[end] == ' ' || f.source[end] == '\t') {
		end++
	}
	return string(f.source[start:end])
}

// GenerateUID returns an identifier derived from hint that no identifier in
// the file uses: _hint, _hint2, _hint3 ...
func (f *File) GenerateUID(hint string) string {
	if f.idents == nil {
		f.collectIdentifiers()
	}

	base := uidBase(hint)
	for i := 1; ; i++ {
		name := base
		if i > 1 {
			name += strconv.Itoa(i)
		}
		uid := "_" + name
		if _, taken := f.idents[uid]; taken {
			continue
		}
		if _, taken := f.uids[uid]; taken {
			continue
		}
		f.uids[uid] = struct{}{}
		return uid
	}
}

// GenerateDeclaredUID is GenerateUID plus a `var` declaration placed before
// the first statement of the program, after any hashbang or directives.
func (f *File) GenerateDeclaredUID(hint string) string {
	uid := f.GenerateUID(hint)
	decl := VarDeclaration(uid)

	first := f.firstStatement()
	if first == nil {
		pos := uint(len(f.source))
		f.record(pos, pos, "\n"+decl)
		return uid
	}
	f.record(first.StartByte(), first.StartByte(), decl+"\n"+f.indentOf(first.StartByte()))
	return uid
}

func (f *File) firstStatement() *Node {
	root := f.Root()
	prologue := true
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "hash_bang_line", "comment":
			continue
		case "expression_statement":
			if prologue && isDirective(child) {
				continue
			}
		}
		prologue = false
		return child
	}
	return nil
}

func isDirective(stmt *Node) bool {
	expr := stmt.NamedChild(0)
	return expr != nil && expr.Kind() == "string"
}

func (f *File) collectIdentifiers() {
	f.idents = make(map[string]struct{})
	Walk(f.Root(), Visitor{
		Enter: func(n *Node) Action {
			if n.IsNamed() && n.ChildCount() == 0 && strings.HasSuffix(n.Kind(), "identifier") {
				f.idents[f.Text(n)] = struct{}{}
			}
			return Continue
		},
	})
}

// uidBase camel-cases a hint into an identifier without leading underscores
// or trailing digits, so numbered suffixes never collide with the base
func uidBase(hint string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range hint {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			if upperNext {
				r = unicode.ToUpper(r)
				upperNext = false
			}
			b.WriteRune(r)
			continue
		}
		upperNext = b.Len() > 0
	}
	name := strings.TrimLeft(b.String(), "_")
	name = strings.TrimRightFunc(name, unicode.IsDigit)
	if name == "" {
		return "temp"
	}
	return name
}

// Output applies every recorded edit and returns the new source. Edits that
// overlap a replaced range are rejected.
func (f *File) Output() ([]byte, error) {
	if len(f.edits) == 0 {
		out := make([]byte, len(f.source))
		copy(out, f.source)
		return out, nil
	}

	edits := make([]edit, len(f.edits))
	copy(edits, f.edits)
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.isInsert() != b.isInsert() {
			return a.isInsert()
		}
		return a.seq < b.seq
	})

	var out strings.Builder
	out.Grow(len(f.source) + 64*len(edits))
	cursor := uint(0)
	for _, e := range edits {
		if e.start < cursor {
			return nil, fmt.Errorf("overlapping edit at byte %d (previous edit ends at %d)", e.start, cursor)
		}
		if e.end > uint(len(f.source)) {
			return nil, fmt.Errorf("edit range %d-%d outside source of %d bytes", e.start, e.end, len(f.source))
		}
		out.Write(f.source[cursor:e.start])
		out.WriteString(e.text)
		cursor = e.end
	}
	out.Write(f.source[cursor:])
	return []byte(out.String()), nil
}
