package displayname

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// Matcher decides which files are left alone. Matching is case-insensitive
// and runs against slash separated paths relative to the working directory.
type Matcher struct {
	only   []string
	ignore []string
}

// NewMatcher validates the patterns and lowercases them for matching
func NewMatcher(only, ignore []string) (*Matcher, error) {
	m := &Matcher{}
	var err error
	if m.only, err = compilePatterns("only", only); err != nil {
		return nil, err
	}
	if m.ignore, err = compilePatterns("ignore", ignore); err != nil {
		return nil, err
	}
	return m, nil
}

func compilePatterns(field string, patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.ToLower(strings.TrimPrefix(p, "./"))
		if !doublestar.ValidatePattern(p) {
			return nil, dnerrors.NewConfigError(field, p, doublestar.ErrBadPattern)
		}
		out = append(out, p)
	}
	return out, nil
}

// Skip reports whether the file at rel should not be processed. Only takes
// priority: when it is set, Ignore is never evaluated.
func (m *Matcher) Skip(rel string) bool {
	rel = strings.ToLower(strings.TrimPrefix(rel, "./"))
	if len(m.only) > 0 {
		return !matchAny(m.only, rel)
	}
	if len(m.ignore) > 0 {
		return matchAny(m.ignore, rel)
	}
	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// patterns were validated by NewMatcher
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
