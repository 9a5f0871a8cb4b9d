package hooks

import (
	"fmt"
	"plugin"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// PluginSymbol is the function a Go plugin hook must export
const PluginSymbol = "Rename"

type pluginHook struct {
	path string
	fn   func(name, filename, cwd string) string
}

func openPlugin(path string) (Hook, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, dnerrors.NewHookError("load", path, err)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, dnerrors.NewHookError("load", path, err)
	}

	switch fn := sym.(type) {
	case func(name, filename, cwd string) string:
		return &pluginHook{path: path, fn: fn}, nil
	case *func(name, filename, cwd string) string:
		if fn == nil || *fn == nil {
			break
		}
		return &pluginHook{path: path, fn: *fn}, nil
	}
	return nil, dnerrors.NewHookError("load", path,
		fmt.Errorf("symbol %s has type %T, want func(name, filename, cwd string) string", PluginSymbol, sym))
}

func (h *pluginHook) Rename(name string, info Info) (string, error) {
	return h.fn(name, info.Filename, info.Cwd), nil
}

func (h *pluginHook) Path() string { return h.path }

// Go plugins cannot be unloaded
func (h *pluginHook) Close() error { return nil }
