package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// ErrUnknownKey is wrapped by the ConfigError returned for unrecognized keys
var ErrUnknownKey = errors.New("unknown config key")

var topLevelKeys = []string{
	"version", "project", "only", "ignore", "rename", "extensions",
	"exclude", "respect_gitignore", "output", "performance",
}

var sectionKeys = map[string][]string{
	"project":     {"root"},
	"output":      {"dir", "in_place"},
	"performance": {"workers", "watch_debounce_ms", "validate_threshold_kb"},
}

// minSuggestionSimilarity is the Levenshtein similarity a known key needs to
// be offered as a "did you mean"
const minSuggestionSimilarity = 0.5

func unknownKey(key string, known []string) error {
	cerr := dnerrors.NewConfigError(key, "", ErrUnknownKey)
	leaf := key
	if i := strings.LastIndex(key, "."); i >= 0 {
		leaf = key[i+1:]
	}
	if s := suggestKey(leaf, known); s != "" {
		cerr.WithSuggestion(s)
	}
	return cerr
}

func suggestKey(key string, known []string) string {
	key = strings.ToLower(key)
	best, bestScore := "", float32(0)
	for _, k := range known {
		score, err := edlib.StringsSimilarity(key, k, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return ""
	}
	return best
}

func parseTOML(cfg *Config, content []byte) error {
	var raw map[string]any
	if err := toml.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return applyMap(cfg, raw)
}

func parseYAML(cfg *Config, content []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return applyMap(cfg, raw)
}

// applyMap applies a decoded TOML or YAML document. only and ignore (and the
// other list keys) accept a single string or a list of strings.
func applyMap(cfg *Config, raw map[string]any) error {
	var err error
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case "version":
			cfg.Version, err = toInt(key, value)
		case "project":
			err = applySection(key, value, func(k string, v any) (err error) {
				cfg.Project.Root, err = toString("project."+k, v)
				return err
			})
		case "only":
			cfg.Only, err = toStringList(key, value)
		case "ignore":
			cfg.Ignore, err = toStringList(key, value)
		case "rename":
			cfg.Rename, err = toString(key, value)
		case "extensions":
			cfg.Extensions, err = toStringList(key, value)
		case "exclude":
			cfg.Exclude, err = toStringList(key, value)
		case "respect_gitignore":
			cfg.RespectGitignore, err = toBool(key, value)
		case "output":
			err = applySection(key, value, func(k string, v any) (err error) {
				switch k {
				case "dir":
					cfg.Output.Dir, err = toString("output.dir", v)
				case "in_place":
					cfg.Output.InPlace, err = toBool("output.in_place", v)
				}
				return err
			})
		case "performance":
			err = applySection(key, value, func(k string, v any) (err error) {
				switch k {
				case "workers":
					cfg.Performance.Workers, err = toInt("performance.workers", v)
				case "watch_debounce_ms":
					cfg.Performance.WatchDebounceMs, err = toInt("performance.watch_debounce_ms", v)
				case "validate_threshold_kb":
					cfg.Performance.ValidateThresholdKB, err = toInt("performance.validate_threshold_kb", v)
				}
				return err
			})
		default:
			err = unknownKey(key, topLevelKeys)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applySection(section string, value any, set func(key string, v any) error) error {
	m, ok := value.(map[string]any)
	if !ok {
		return typeError(section, value, "a table")
	}
	known := sectionKeys[section]
	for _, key := range sortedKeys(m) {
		if !contains(known, key) {
			return unknownKey(section+"."+key, known)
		}
		if err := set(key, m[key]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func typeError(key string, value any, want string) error {
	return dnerrors.NewConfigError(key, fmt.Sprint(value), fmt.Errorf("expected %s, got %T", want, value))
}

func toString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", typeError(key, value, "a string")
	}
	return s, nil
}

func toStringList(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, typeError(key, item, "a string")
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return v, nil
	}
	return nil, typeError(key, value, "a string or a list of strings")
}

func toBool(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, typeError(key, value, "a boolean")
	}
	return b, nil
}

func toInt(key string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, typeError(key, value, "an integer")
}
