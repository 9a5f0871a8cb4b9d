package displayname

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/internal/hooks"
	"github.com/standardbeagle/displayname/internal/syntax"
)

func transform(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	if opts.Cwd == "" {
		opts.Cwd = "/repo"
	}
	res, err := Transform([]byte(src), opts)
	require.NoError(t, err)
	return res
}

func TestTransform_Annotates(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		src      string
		expected string
	}{
		{
			name:     "arrow bound to a variable",
			src:      "const bar = () => <div/>;\nexport {bar};\n",
			expected: "const bar = () => <div/>;\nbar.displayName = \"bar\";\nexport {bar};\n",
		},
		{
			name:     "anonymous default export arrow",
			src:      "export default () => <div/>;\n",
			expected: "var _default;\nexport default _default = () => <div/>;\n_default.displayName = \"_default\";\n",
		},
		{
			name:     "function declaration",
			src:      "function functionDeclaration(){ return <div/>; }\nexport default functionDeclaration;\n",
			expected: "function functionDeclaration(){ return <div/>; }\nfunctionDeclaration.displayName = \"functionDeclaration\";\nexport default functionDeclaration;\n",
		},
		{
			name:     "class with render method",
			src:      "class MyComponent { render(){ return <div/>; } }\nexport default MyComponent;\n",
			expected: "class MyComponent { render(){ return <div/>; } }\nMyComponent.displayName = \"MyComponent\";\nexport default MyComponent;\n",
		},
		{
			name:     "class render without jsx still counts",
			src:      "class Legacy extends Component {\n  render() { return null; }\n}\n",
			expected: "class Legacy extends Component {\n  render() { return null; }\n}\nLegacy.displayName = \"Legacy\";\n",
		},
		{
			name:     "named function expression uses the variable",
			src:      "const functionExpression = function inner() { return <a/>; };\n",
			expected: "const functionExpression = function inner() { return <a/>; };\nfunctionExpression.displayName = \"functionExpression\";\n",
		},
		{
			name:     "named default export keeps its name",
			src:      "export default function Page() { return <main/>; }\n",
			expected: "export default function Page() { return <main/>; }\nPage.displayName = \"Page\";\n",
		},
		{
			name:     "anonymous default export class",
			src:      "export default class extends Component { render() { return <div/>; } }\n",
			expected: "var _default;\nexport default _default = class extends Component { render() { return <div/>; } }\n_default.displayName = \"_default\";\n",
		},
		{
			name:     "exported const",
			src:      "export const Button = () => <button/>;\n",
			expected: "export const Button = () => <button/>;\nButton.displayName = \"Button\";\n",
		},
		{
			name:     "wrapped in a call but bound",
			src:      "const Memo = React.memo(() => <div/>);\n",
			expected: "const Memo = React.memo(() => <div/>);\nMemo.displayName = \"Memo\";\n",
		},
		{
			name:     "bound class expression",
			src:      "const Widget = class { render() { return <i/>; } };\n",
			expected: "const Widget = class { render() { return <i/>; } };\nWidget.displayName = \"Widget\";\n",
		},
		{
			name:     "inner component of a non-component function",
			src:      "function makeThing() {\n  const Inner = () => <span/>;\n  return Inner;\n}\n",
			expected: "function makeThing() {\n  const Inner = () => <span/>;\n  Inner.displayName = \"Inner\";\n  return Inner;\n}\n",
		},
		{
			name:     "nested component is left alone",
			src:      "function Outer() {\n  const Inner = () => <span/>;\n  return <div><Inner/></div>;\n}\n",
			expected: "function Outer() {\n  const Inner = () => <span/>;\n  return <div><Inner/></div>;\n}\nOuter.displayName = \"Outer\";\n",
		},
		{
			name:     "generated name avoids existing bindings",
			src:      "const _default = 1;\nexport default () => <p>{_default}</p>;\n",
			expected: "var _default2;\nconst _default = 1;\nexport default _default2 = () => <p>{_default}</p>;\n_default2.displayName = \"_default2\";\n",
		},
		{
			name:     "directive prologue stays first",
			src:      "'use client';\nexport default () => <div/>;\n",
			expected: "'use client';\nvar _default;\nexport default _default = () => <div/>;\n_default.displayName = \"_default\";\n",
		},
		{
			name:     "tsx component with type annotation",
			filename: "/repo/src/App.tsx",
			src:      "export const App: React.FC<Props> = ({ title }: Props) => <h1>{title}</h1>;\n",
			expected: "export const App: React.FC<Props> = ({ title }: Props) => <h1>{title}</h1>;\nApp.displayName = \"App\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := transform(t, tt.src, Options{Filename: tt.filename})
			assert.Equal(t, tt.expected, string(res.Code))
			assert.True(t, res.Changed)
			assert.False(t, res.Skipped)
			assert.NotEmpty(t, res.Annotations)
		})
	}
}

func TestTransform_LeavesSourceAlone(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"call argument arrow", "render(() => <div/>, root);\n"},
		{"call argument function", "items.forEach(function () { return <li/>; });\n"},
		{"no jsx", "function helper() { return 1; }\nconst add = (a, b) => a + b;\n"},
		{"class without render", "class Store { get() { return <div/>; } }\n"},
		{"static render", "class Factory { static render() { return <div/>; } }\n"},
		{"private render", "class Hidden { #render() { return <div/>; } }\n"},
		{"render field", "class Field { render = () => null; }\n"},
		{"jsx only inside a nested function", "function outer(items) { return items.map(function () { return <li/>; }); }\n"},
		{"destructuring default", "const { Comp = () => <div/> } = props;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := transform(t, tt.src, Options{})
			assert.Equal(t, tt.src, string(res.Code))
			assert.False(t, res.Changed)
			assert.Empty(t, res.Annotations)
		})
	}
}

func TestTransform_TypeScriptWithoutJSX(t *testing.T) {
	src := "export function add(a: number, b: number): number { return a + b; }\n"
	res := transform(t, src, Options{Filename: "/repo/math.ts"})
	assert.Equal(t, src, string(res.Code))
	assert.False(t, res.Changed)
}

func TestTransform_Annotations(t *testing.T) {
	src := "const A = () => <a/>;\n\nexport default class B {\n  render() { return <b/>; }\n}\nfunction C() { return <c/>; }\n"
	res := transform(t, src, Options{})

	require.Len(t, res.Annotations, 3)
	assert.Equal(t, Annotation{Name: "A", Target: "A", Kind: KindArrow, Line: 1, Column: 11}, res.Annotations[0])
	assert.Equal(t, Annotation{Name: "B", Target: "B", Kind: KindClass, Line: 3, Column: 16}, res.Annotations[1])
	assert.Equal(t, Annotation{Name: "C", Target: "C", Kind: KindFunction, Line: 6, Column: 1}, res.Annotations[2])
}

func TestTransform_Rename(t *testing.T) {
	var seen []hooks.Info
	upper := hooks.RenameFunc(func(name string, info hooks.Info) string {
		seen = append(seen, info)
		return strings.ToUpper(name)
	})

	res := transform(t, "const foo = () => <div/>;\n", Options{
		Filename: "/repo/src/foo.jsx",
		Cwd:      "/repo",
		Rename:   upper,
	})
	assert.Equal(t, "const foo = () => <div/>;\nfoo.displayName = \"FOO\";\n", string(res.Code))
	assert.Equal(t, "foo", res.Annotations[0].Target)
	assert.Equal(t, "FOO", res.Annotations[0].Name)
	assert.Equal(t, []hooks.Info{{Filename: "/repo/src/foo.jsx", Cwd: "/repo"}}, seen)
}

func TestTransform_RenameFallsBackOnEmptyAnswer(t *testing.T) {
	none := hooks.RenameFunc(func(string, hooks.Info) string { return "" })
	res := transform(t, "const foo = () => <div/>;\n", Options{Rename: none})
	assert.Contains(t, string(res.Code), `foo.displayName = "foo";`)
}

func TestTransform_RenameIsNotSanitized(t *testing.T) {
	quote := hooks.RenameFunc(func(name string, _ hooks.Info) string { return `say "` + name + `"` })
	res := transform(t, "const foo = () => <div/>;\n", Options{Rename: quote})
	assert.Contains(t, string(res.Code), `foo.displayName = "say \"foo\"";`)
}

type failingRenamer struct{ err error }

func (f failingRenamer) Rename(string, hooks.Info) (string, error) { return "", f.err }

func TestTransform_RenameError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Transform([]byte("const foo = () => <div/>;\n"), Options{
		Filename: "/repo/a.js",
		Cwd:      "/repo",
		Rename:   failingRenamer{err: boom},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	var terr *dnerrors.TransformError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "a.js", terr.FilePath)
}

func TestTransform_RenamePathMissing(t *testing.T) {
	_, err := Transform([]byte("const foo = () => <div/>;\n"), Options{
		Cwd:        t.TempDir(),
		RenamePath: "missing-hook.js",
	})
	require.Error(t, err)

	var herr *dnerrors.HookError
	assert.True(t, errors.As(err, &herr))
}

func TestTransform_SkippedFileDoesNotLoadHook(t *testing.T) {
	src := "const foo = () => <div/>;\n"
	res := transform(t, src, Options{
		Filename:   "/repo/src/foo.spec.js",
		Cwd:        "/repo",
		Ignore:     []string{"**/*.spec.js"},
		RenamePath: "missing-hook.js",
	})
	assert.True(t, res.Skipped)
	assert.Equal(t, src, string(res.Code))
}

func TestTransform_Filtering(t *testing.T) {
	src := "const foo = () => <div/>;\n"

	tests := []struct {
		name     string
		filename string
		only     []string
		ignore   []string
		skipped  bool
	}{
		{"ignored by pattern", "/repo/src/foo.spec.js", nil, []string{"**/*.spec.js"}, true},
		{"ignore is case insensitive", "/repo/src/Foo.SPEC.js", nil, []string{"**/*.spec.JS"}, true},
		{"not ignored", "/repo/src/foo.js", nil, []string{"**/*.spec.js"}, false},
		{"only matches", "/repo/src/foo.js", []string{"src/**"}, nil, false},
		{"only does not match", "/repo/lib/foo.js", []string{"src/**"}, nil, true},
		{"only wins over ignore", "/repo/src/foo.js", []string{"src/**"}, []string{"**/*.js"}, false},
		{"no filename disables filtering", "", []string{"src/**"}, nil, false},
		{"no options", "/repo/src/foo.js", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := transform(t, src, Options{
				Filename: tt.filename,
				Cwd:      "/repo",
				Only:     tt.only,
				Ignore:   tt.ignore,
			})
			assert.Equal(t, tt.skipped, res.Skipped)
			if tt.skipped {
				assert.Equal(t, src, string(res.Code))
				assert.Empty(t, res.Annotations)
			} else {
				assert.Len(t, res.Annotations, 1)
			}
		})
	}
}

func TestTransform_InvalidPattern(t *testing.T) {
	_, err := Transform([]byte("x;\n"), Options{Filename: "/repo/a.js", Cwd: "/repo", Ignore: []string{"[a-"}})
	require.Error(t, err)

	var cerr *dnerrors.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func TestTransform_ParseError(t *testing.T) {
	_, err := Transform([]byte("const = <div/>;\n"), Options{Filename: "/repo/src/bad.js", Cwd: "/repo"})
	require.Error(t, err)

	var perr *dnerrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "src/bad.js", perr.FilePath)
	assert.Equal(t, 1, perr.Line)
}

func TestTransformer_Reuse(t *testing.T) {
	tr := NewTransformer()
	defer tr.Close()

	for _, filename := range []string{"/repo/a.jsx", "/repo/b.ts", "/repo/c.tsx", "/repo/d.jsx"} {
		src := "export function Comp() { return null; }\n"
		res, err := tr.Transform([]byte(src), Options{Filename: filename, Cwd: "/repo"})
		require.NoError(t, err, filename)
		assert.Equal(t, src, string(res.Code))
	}
}

func TestResolveTarget_Unsupported(t *testing.T) {
	p := syntax.NewParser()
	defer p.Close()
	f, err := p.Parse(syntax.JavaScript, []byte("render(() => <div/>);\nlet x = 1;\n"))
	require.NoError(t, err)
	defer f.Close()

	var arrow, number *syntax.Node
	syntax.Walk(f.Root(), syntax.Visitor{Kinds: map[string]syntax.VisitFunc{
		syntax.KindArrowFunction: func(n *syntax.Node) syntax.Action { arrow = n; return syntax.Continue },
		"number":                 func(n *syntax.Node) syntax.Action { number = n; return syntax.Continue },
	}})
	require.NotNil(t, arrow)
	require.NotNil(t, number)

	_, err = resolveTarget(f, arrow)
	assert.True(t, errors.Is(err, dnerrors.ErrUnsupportedNode))

	_, err = resolveTarget(f, number)
	var uerr *dnerrors.UnsupportedNodeError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "number", uerr.Kind)
	assert.Equal(t, 2, uerr.Line)
}

func TestResolveName(t *testing.T) {
	name, err := resolveName("", nil, hooks.Info{})
	require.NoError(t, err)
	assert.Equal(t, "null", name)

	name, err = resolveName("Foo", nil, hooks.Info{})
	require.NoError(t, err)
	assert.Equal(t, "Foo", name)

	prefix := hooks.RenameFunc(func(n string, _ hooks.Info) string { return "App." + n })
	name, err = resolveName("Foo", prefix, hooks.Info{})
	require.NoError(t, err)
	assert.Equal(t, "App.Foo", name)
}
