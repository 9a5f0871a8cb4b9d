package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config file names, searched in this order in the project root
const (
	KDLFileName  = ".displayname.kdl"
	TOMLFileName = "displayname.toml"
	YAMLFileName = ".displayname.yaml"
	YMLFileName  = ".displayname.yml"
)

var configFileNames = []string{KDLFileName, TOMLFileName, YAMLFileName, YMLFileName}

type Config struct {
	Version int
	Project Project

	// Only and Ignore filter files by glob relative to the project root
	Only   []string
	Ignore []string
	// Rename is a hook path resolved against the project root
	Rename string

	// Extensions limits directory walks; empty means every supported extension
	Extensions       []string
	Exclude          []string
	RespectGitignore bool

	Output      Output
	Performance Performance
}

type Project struct {
	Root string
}

type Output struct {
	Dir     string // mirror tree for annotated files
	InPlace bool   // rewrite sources in place
}

type Performance struct {
	Workers         int // 0 = auto-detect
	WatchDebounceMs int
	// files above this size are checked for binary content before parsing
	ValidateThresholdKB int
}

// Default returns the configuration used when no config file exists
func Default(root string) *Config {
	return &Config{
		Version:          1,
		Project:          Project{Root: root},
		RespectGitignore: true,
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/bower_components/**",
			"**/jspm_packages/**",
			"**/*.min.js",
			"**/*.bundle.js",
			"**/*.chunk.js",
			"**/*.d.ts",
		},
		Performance: Performance{
			Workers:             0,
			WatchDebounceMs:     200,
			ValidateThresholdKB: 512,
		},
	}
}

// Load reads the first config file found in rootDir, merged over the global
// ~/.displayname.kdl when one exists. Without any file the defaults are used.
func Load(rootDir string) (*Config, error) {
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", rootDir, err)
	}

	var base *Config
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) != absRoot {
		if path := filepath.Join(home, KDLFileName); fileExists(path) {
			if base, err = LoadFile(path); err != nil {
				return nil, err
			}
		}
	}

	var project *Config
	for _, name := range configFileNames {
		path := filepath.Join(absRoot, name)
		if !fileExists(path) {
			continue
		}
		if project, err = LoadFile(path); err != nil {
			return nil, err
		}
		break
	}

	var cfg *Config
	switch {
	case base != nil && project != nil:
		cfg = mergeConfigs(base, project)
	case project != nil:
		cfg = project
	case base != nil:
		cfg = base
		cfg.Project.Root = absRoot
	default:
		cfg = Default(absRoot)
	}

	cfg.EnrichExclusions()
	return cfg, nil
}

// LoadFile reads one config file, picking the format from its name.
// A relative project root is resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg := Default(dir)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		err = parseKDL(cfg, string(content))
	case ".toml":
		err = parseTOML(cfg, content)
	case ".yaml", ".yml":
		err = parseYAML(cfg, content)
	default:
		err = fmt.Errorf("unknown config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(dir, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
	return cfg, nil
}

// mergeConfigs lets the project config win while keeping the global
// exclusions
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	if merged.Rename == "" {
		merged.Rename = base.Rename
	}
	return &merged
}

// EnrichExclusions adds .gitignore entries and detected build output
// directories to Exclude
func (c *Config) EnrichExclusions() {
	if c.Project.Root == "" {
		return
	}

	if c.RespectGitignore {
		gp := NewGitignoreParser()
		if err := gp.LoadGitignore(c.Project.Root); err == nil {
			c.Exclude = append(c.Exclude, gp.GetExclusionPatterns()...)
		}
	}

	c.Exclude = append(c.Exclude, NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()...)
	c.Exclude = DeduplicatePatterns(c.Exclude)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
