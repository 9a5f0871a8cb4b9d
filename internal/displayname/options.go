// Package displayname finds React components in JavaScript and TypeScript
// sources and records their names in `displayName` assignments.
package displayname

import (
	"github.com/standardbeagle/displayname/internal/hooks"
	"github.com/standardbeagle/displayname/internal/syntax"
)

// SourceSentinel stands in for the file name of sources read without one
const SourceSentinel = "<source>"

// Options configures one Transform call
type Options struct {
	// Filename is the path of the source unit. Only/Ignore filtering is
	// applied only when it is set.
	Filename string
	// Cwd is the working directory; relative filenames and hook paths are
	// resolved against it. Defaults to the process working directory.
	Cwd string

	// Only limits processing to files matching one of these globs.
	// When set, Ignore is not consulted.
	Only []string
	// Ignore skips files matching one of these globs
	Ignore []string

	// Rename is used as the naming hook when set
	Rename hooks.Renamer
	// RenamePath names a hook to load when Rename is nil
	RenamePath string

	// Language overrides the grammar picked from Filename
	Language syntax.Language
}

// Kind classifies an annotated declaration
type Kind string

const (
	KindClass              Kind = "class"
	KindClassExpression    Kind = "class-expression"
	KindFunction           Kind = "function"
	KindFunctionExpression Kind = "function-expression"
	KindArrow              Kind = "arrow"
)

// Annotation describes one inserted displayName assignment
type Annotation struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Kind   Kind   `json:"kind"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Result is the outcome of transforming one source unit
type Result struct {
	Code        []byte       `json:"-"`
	Annotations []Annotation `json:"annotations"`
	Skipped     bool         `json:"skipped"`
	Changed     bool         `json:"changed"`
}
