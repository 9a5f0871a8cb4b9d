// Package pathutil provides utilities for converting between absolute and relative paths.
//
// displayname works with absolute paths internally. Glob filters (only/ignore) and
// user-facing output use paths relative to the working directory.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or the path is outside root.
//
// Examples:
//   - ToRelative("/home/user/project/src/App.jsx", "/home/user/project") → "src/App.jsx"
//   - ToRelative("/other/location/App.jsx", "/home/user/project") → "/other/location/App.jsx"
//   - ToRelative("src/App.jsx", "/home/user/project") → "src/App.jsx"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// Outside the root: the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// ToSlashRelative returns path relative to rootDir using forward slashes, the
// form glob patterns are matched against. Unlike ToRelative it keeps ".."
// segments for files outside the root. Relative inputs are resolved against
// rootDir first.
func ToSlashRelative(path, rootDir string) string {
	if path == "" {
		return ""
	}
	if rootDir == "" {
		return filepath.ToSlash(filepath.Clean(path))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	relPath, err := filepath.Rel(filepath.Clean(rootDir), filepath.Clean(path))
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves path against rootDir unless it is already absolute.
func ToAbsolute(path, rootDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if rootDir == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return filepath.Join(rootDir, path)
}
