package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// FileValidator checks large sources before they reach the parser. Images
// or archives saved with a script extension and minified bundles are
// rejected instead of being parsed in full.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int64 // Bytes inspected from the start of the file
	MaxLineLength       int   // Average line length above which a file counts as minified
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
		MaxLineLength:       1000,
	}
}

// binary signatures that show up with a .js extension in practice
var magicBytes = map[string][]byte{
	"PNG image":   {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"JPEG image":  {0xFF, 0xD8, 0xFF},
	"GIF image":   {0x47, 0x49, 0x46, 0x38},
	"PDF":         {0x25, 0x50, 0x44, 0x46, 0x2D},
	"zip archive": {0x50, 0x4B, 0x03, 0x04},
	"gzip data":   {0x1F, 0x8B},
	"WebAssembly": {0x00, 0x61, 0x73, 0x6D},
}

// Validate inspects content read from path. Content at or below the
// threshold is always accepted.
func (fv *FileValidator) Validate(path string, content []byte) error {
	if int64(len(content)) <= fv.ValidationThreshold {
		return nil
	}

	header := content
	if int64(len(header)) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	if kind := detectSignature(header); kind != "" {
		return fmt.Errorf("file is a %s with a %s extension", kind, filepath.Ext(path))
	}
	if fv.isBinaryData(header) {
		return errors.New("file appears to be binary (code extension on binary file)")
	}
	if fv.isMinified(header) {
		return errors.New("file appears to be minified")
	}
	return fv.validateCodeFile(path, header)
}

func detectSignature(header []byte) string {
	for kind, magic := range magicBytes {
		if bytes.HasPrefix(header, magic) {
			return kind
		}
	}
	return ""
}

// isBinaryData checks if file contains binary data
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	// Control characters other than tab, LF and CR, plus DEL
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// If more than 30% non-printable, consider binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

func (fv *FileValidator) isMinified(data []byte) bool {
	if fv.MaxLineLength <= 0 || len(data) == 0 {
		return false
	}
	lines := bytes.Count(data, []byte{'\n'}) + 1
	return len(data)/lines > fv.MaxLineLength
}

// validateCodeFile checks the header looks like source for its extension
func (fv *FileValidator) validateCodeFile(path string, header []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return fv.validateJSFile(header)
	case ".ts", ".tsx", ".mts", ".cts":
		return fv.validateTypeScriptFile(header)
	}
	return nil
}

var jsPatterns = [][]byte{
	[]byte("function "),
	[]byte("const "),
	[]byte("let "),
	[]byte("var "),
	[]byte("=>"),
	[]byte("import "),
	[]byte("export "),
	[]byte("class "),
	[]byte("require("),
	[]byte("React"),
	[]byte("</"),
}

var tsPatterns = [][]byte{
	[]byte("interface "),
	[]byte("type "),
	[]byte("enum "),
	[]byte("namespace "),
	[]byte(": string"),
	[]byte(": number"),
	[]byte(": boolean"),
	[]byte("<T>"),
}

func (fv *FileValidator) validateJSFile(header []byte) error {
	if containsAny(header, jsPatterns) {
		return nil
	}
	return errors.New("no JavaScript patterns found")
}

func (fv *FileValidator) validateTypeScriptFile(header []byte) error {
	if containsAny(header, tsPatterns) {
		return nil
	}
	// TS without annotations in the header is still JS
	if containsAny(header, jsPatterns) {
		return nil
	}
	return errors.New("no TypeScript patterns found")
}

func containsAny(data []byte, patterns [][]byte) bool {
	for _, p := range patterns {
		if bytes.Contains(data, p) {
			return true
		}
	}
	return false
}
