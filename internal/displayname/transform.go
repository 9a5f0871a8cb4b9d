package displayname

import (
	"errors"
	"os"

	"github.com/standardbeagle/displayname/internal/debug"
	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/internal/hooks"
	"github.com/standardbeagle/displayname/internal/syntax"
	"github.com/standardbeagle/displayname/pkg/pathutil"
)

// Transformer annotates source units. It reuses its parsers across calls
// and is not safe for concurrent use.
type Transformer struct {
	parser *syntax.Parser
}

// NewTransformer creates a transformer with its own parsers
func NewTransformer() *Transformer {
	return &Transformer{parser: syntax.NewParser()}
}

// Close releases the parsers
func (t *Transformer) Close() {
	t.parser.Close()
}

// Transform annotates every component in src with a single-use Transformer
func Transform(src []byte, opts Options) (*Result, error) {
	t := NewTransformer()
	defer t.Close()
	return t.Transform(src, opts)
}

// visitState is shared by every visit of one walk
type visitState struct {
	file   *syntax.File
	rename hooks.Renamer
	info   hooks.Info

	annotations []Annotation
	err         error
}

// Transform skips filtered files, resolves the rename hook and then walks
// the tree once, annotating the outermost component at each position.
// Any error leaves the source untouched.
func (t *Transformer) Transform(src []byte, opts Options) (*Result, error) {
	cwd := opts.Cwd
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		}
	}

	rel := SourceSentinel
	if opts.Filename != "" {
		rel = pathutil.ToSlashRelative(opts.Filename, cwd)
	}

	matcher, err := NewMatcher(opts.Only, opts.Ignore)
	if err != nil {
		return nil, dnerrors.NewTransformError("filter", err).WithFile(rel)
	}
	if opts.Filename != "" && matcher.Skip(rel) {
		debug.LogTransform("skipping %s\n", rel)
		return &Result{Code: src, Skipped: true}, nil
	}

	rename := opts.Rename
	if rename == nil && opts.RenamePath != "" {
		hook, err := hooks.Load(opts.RenamePath, cwd)
		if err != nil {
			return nil, err
		}
		defer hook.Close()
		rename = hook
	}

	lang := opts.Language
	if lang == "" {
		lang, _ = syntax.LanguageForPath(opts.Filename)
	}
	file, err := t.parser.Parse(lang, src)
	if err != nil {
		var perr *dnerrors.ParseError
		if errors.As(err, &perr) {
			return nil, perr.WithFile(rel)
		}
		return nil, dnerrors.NewTransformError("parse", err).WithFile(rel)
	}
	defer file.Close()

	state := &visitState{
		file:   file,
		rename: rename,
		info:   hooks.Info{Filename: opts.Filename, Cwd: cwd},
	}
	state.walk()
	if state.err != nil {
		return nil, dnerrors.NewTransformError("annotate", state.err).WithFile(rel)
	}

	code, err := file.Output()
	if err != nil {
		return nil, dnerrors.NewTransformError("print", err).WithFile(rel)
	}
	return &Result{
		Code:        code,
		Annotations: state.annotations,
		Changed:     file.Changed(),
	}, nil
}

func (s *visitState) walk() {
	classes := func(n *syntax.Node) syntax.Action {
		if !IsClassComponent(s.file, n) || (syntax.IsClassExpression(n) && !isBound(n)) {
			return syntax.Continue
		}
		return s.visit(n)
	}
	functions := func(n *syntax.Node) syntax.Action {
		if !IsFunctionComponent(n) {
			return syntax.Continue
		}
		return s.visit(n)
	}

	syntax.Walk(s.file.Root(), syntax.Visitor{Kinds: map[string]syntax.VisitFunc{
		syntax.KindClassDeclaration:   classes,
		syntax.KindAbstractClass:      classes,
		syntax.KindClassExpression:    classes,
		syntax.KindFunctionDecl:       functions,
		syntax.KindGeneratorDecl:      functions,
		syntax.KindFunctionExpr:       functions,
		syntax.KindLegacyFunctionExpr: functions,
		syntax.KindGeneratorExpr:      functions,
		syntax.KindArrowFunction:      functions,
	}})
}

// visit annotates a matched component and keeps the walk out of its body
func (s *visitState) visit(n *syntax.Node) syntax.Action {
	target, err := resolveTarget(s.file, n)
	if err != nil {
		s.err = err
		return syntax.Stop
	}
	name, err := resolveName(target, s.rename, s.info)
	if err != nil {
		s.err = err
		return syntax.Stop
	}

	if !annotate(s.file, n, target, name) {
		debug.LogTransform("no statement list around %s at byte %d, not annotated\n", target, n.StartByte())
		return syntax.SkipChildren
	}

	pos := n.StartPosition()
	s.annotations = append(s.annotations, Annotation{
		Name:   name,
		Target: target,
		Kind:   kindOf(n),
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	})
	debug.LogTransform("%s %s -> %q\n", kindOf(n), target, name)
	return syntax.SkipChildren
}
