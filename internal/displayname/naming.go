package displayname

import (
	"github.com/standardbeagle/displayname/internal/hooks"
)

// resolveName computes the display name for a binding. A missing binding
// name becomes "null"; an empty hook answer keeps the base name.
func resolveName(target string, rename hooks.Renamer, info hooks.Info) (string, error) {
	name := target
	if name == "" {
		name = "null"
	}
	if rename == nil {
		return name, nil
	}

	renamed, err := rename.Rename(name, info)
	if err != nil {
		return "", err
	}
	if renamed == "" {
		return name, nil
	}
	return renamed, nil
}
