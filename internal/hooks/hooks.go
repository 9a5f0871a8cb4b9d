// Package hooks loads user supplied display name renaming functions.
package hooks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/displayname/internal/debug"
	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/pkg/pathutil"
)

// Info describes the source unit a name belongs to
type Info struct {
	Filename string `json:"filename"`
	Cwd      string `json:"cwd"`
}

// Renamer maps a declared name to a display name. An empty result means
// "keep the declared name".
type Renamer interface {
	Rename(name string, info Info) (string, error)
}

// RenameFunc adapts a plain Go function to Renamer
type RenameFunc func(name string, info Info) string

// Rename calls f
func (f RenameFunc) Rename(name string, info Info) (string, error) {
	return f(name, info), nil
}

// Hook is a Renamer backed by an external resource
type Hook interface {
	Renamer
	io.Closer
	// Path is the resolved location the hook was loaded from
	Path() string
}

// Load resolves path against cwd and loads the hook it names:
// .so files are Go plugins, .js/.mjs/.cjs modules run under node, and
// anything else is started as an executable speaking the line protocol.
func Load(path, cwd string) (Hook, error) {
	if strings.TrimSpace(path) == "" {
		return nil, dnerrors.NewHookError("load", path, fmt.Errorf("empty hook path"))
	}
	resolved := pathutil.ToAbsolute(path, cwd)

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, dnerrors.NewHookError("load", resolved, err)
	}
	if info.IsDir() {
		return nil, dnerrors.NewHookError("load", resolved, fmt.Errorf("is a directory"))
	}

	debug.LogHook("loading rename hook %s\n", resolved)

	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".so":
		return openPlugin(resolved)
	case ".js", ".mjs", ".cjs":
		return startNodeHook(resolved, cwd)
	default:
		if info.Mode()&0o111 == 0 {
			return nil, dnerrors.NewHookError("load", resolved, fmt.Errorf("not executable"))
		}
		return startProcessHook(resolved, []string{resolved}, cwd, false)
	}
}
