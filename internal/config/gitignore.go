package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// GitignoreParser reads a project's .gitignore and turns its entries into
// doublestar exclusion patterns
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool // trailing slash: matches directories only
	Anchored  bool // leading or inner slash: relative to the .gitignore
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is
// not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	return gp.parse(file)
}

func (gp *GitignoreParser) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern parses one .gitignore line. Blank lines and comments are dropped.
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = line[1:]
	}
	if strings.Contains(line, "/") {
		p.Anchored = true
	}
	if line == "" {
		return
	}
	p.Pattern = line
	gp.patterns = append(gp.patterns, p)
}

// GetExclusionPatterns converts the entries into exclusion globs.
// Negated entries are not supported and are skipped.
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var exclusions []string
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		base := p.Pattern
		if !p.Anchored && !strings.HasPrefix(base, "**/") {
			base = "**/" + base
		}
		if !p.Directory {
			exclusions = append(exclusions, base)
		}
		exclusions = append(exclusions, base+"/**")
	}
	return exclusions
}
