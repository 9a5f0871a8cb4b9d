package syntax

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies the tree-sitter grammar used for a source unit
type Language string

const (
	// JavaScript covers plain JS and JSX
	JavaScript Language = "javascript"
	// TypeScript is the TS grammar without JSX
	TypeScript Language = "typescript"
	// TSX is TypeScript with JSX
	TSX Language = "tsx"
)

var extensionLanguages = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// LanguageForPath picks the grammar from the file extension
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// SupportedExtensions returns every extension with a grammar, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseLanguage converts a user supplied language name
func ParseLanguage(name string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "javascript", "js", "jsx":
		return JavaScript, true
	case "typescript", "ts":
		return TypeScript, true
	case "tsx":
		return TSX, true
	}
	return "", false
}
