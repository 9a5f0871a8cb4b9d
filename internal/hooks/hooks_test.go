package hooks

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script hooks need a POSIX shell")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const upperScript = `while IFS= read -r line; do
  name=$(printf '%s' "$line" | sed -e 's/^{"name":"\([^"]*\)".*/\1/')
  printf '{"name":"%s"}\n' "$(printf '%s' "$name" | tr '[:lower:]' '[:upper:]')"
done
`

func TestRenameFunc(t *testing.T) {
	var got Info
	r := RenameFunc(func(name string, info Info) string {
		got = info
		return strings.ToUpper(name)
	})

	name, err := r.Rename("foo", Info{Filename: "src/a.js", Cwd: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)
	assert.Equal(t, Info{Filename: "src/a.js", Cwd: "/repo"}, got)
}

func TestLoad_ExecutableHook(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "upper", upperScript)

	hook, err := Load("upper", dir)
	require.NoError(t, err)
	defer hook.Close()

	assert.Equal(t, filepath.Join(dir, "upper"), hook.Path())

	for _, tt := range []struct{ in, out string }{
		{"foo", "FOO"},
		{"MyComponent", "MYCOMPONENT"},
		{"bar", "BAR"},
	} {
		name, err := hook.Rename(tt.in, Info{Filename: "a.js", Cwd: dir})
		require.NoError(t, err)
		assert.Equal(t, tt.out, name)
	}

	require.NoError(t, hook.Close())
	_, err = hook.Rename("foo", Info{})
	assert.Error(t, err, "calls after Close must fail")
	assert.NoError(t, hook.Close(), "Close is idempotent")
}

func TestLoad_HookReceivesFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "echo-filename", `while IFS= read -r line; do
  file=$(printf '%s' "$line" | sed -e 's/.*"filename":"\([^"]*\)".*/\1/')
  printf '{"name":"%s"}\n' "$file"
done
`)

	hook, err := Load(path, "/")
	require.NoError(t, err)
	defer hook.Close()

	name, err := hook.Rename("foo", Info{Filename: "src/App.jsx", Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, "src/App.jsx", name)
}

func TestLoad_EmptyAnswer(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "empty", `while IFS= read -r line; do
  printf '{"name":""}\n'
done
`)

	hook, err := Load("empty", dir)
	require.NoError(t, err)
	defer hook.Close()

	name, err := hook.Rename("foo", Info{})
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestLoad_HookReportsError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "failing", `while IFS= read -r line; do
  printf '{"error":"boom"}\n'
done
`)

	hook, err := Load("failing", dir)
	require.NoError(t, err)
	defer hook.Close()

	_, err = hook.Rename("foo", Info{})
	require.Error(t, err)

	var herr *dnerrors.HookError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "call", herr.Operation)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoad_HookExits(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "crash", "echo 'bad things' >&2\nexit 3\n")

	hook, err := Load("crash", dir)
	require.NoError(t, err)

	_, err = hook.Rename("foo", Info{})
	assert.Error(t, err)
	_ = hook.Close()
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "does-not-exist.js"},
		{"directory", "sub"},
		{"not executable", "plain"},
		{"empty path", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook, err := Load(tt.path, dir)
			require.Error(t, err)
			assert.Nil(t, hook)

			var herr *dnerrors.HookError
			assert.True(t, errors.As(err, &herr))
			assert.Equal(t, "load", herr.Operation)
		})
	}
}

func TestLoad_InvalidPlugin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rename.so")
	require.NoError(t, os.WriteFile(path, []byte("not a shared object"), 0o644))

	_, err := Load(path, dir)
	assert.Error(t, err)
}

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node is not installed")
	}
}

func TestLoad_NodeCommonJSHook(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rename.cjs"),
		[]byte("module.exports = (name) => name.toUpperCase();\n"), 0o644))

	hook, err := Load("rename.cjs", dir)
	require.NoError(t, err)
	defer hook.Close()

	name, err := hook.Rename("foo", Info{Filename: "a.js", Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, "FOO", name)
}

func TestLoad_NodeModuleHook(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rename.mjs"),
		[]byte("export default (name, { filename }) => filename === 'skip.js' ? null : `${name}@${filename}`;\n"), 0o644))

	hook, err := Load("rename.mjs", dir)
	require.NoError(t, err)
	defer hook.Close()

	name, err := hook.Rename("Foo", Info{Filename: "a.js", Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, "Foo@a.js", name)

	name, err = hook.Rename("Foo", Info{Filename: "skip.js", Cwd: dir})
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestLoad_NodeModuleWithoutDefault(t *testing.T) {
	requireNode(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rename.mjs"),
		[]byte("export const rename = (name) => name;\n"), 0o644))

	_, err := Load("rename.mjs", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default export")
}
