// Build output detection from JavaScript tooling configuration.
// Annotating compiled bundles would be wasted work, so their directories are
// excluded from directory walks.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector finds build output directories of a JS project
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// outDirFlags are the CLI flags build tools use for their output directory
var outDirFlags = map[string]bool{
	"--outDir":  true, // tsc
	"-outDir":   true,
	"--out-dir": true, // babel
	"-d":        true,
	"--outdir":  true, // esbuild
}

// DetectOutputDirectories returns exclusion globs such as "**/lib/**"
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var dirs []string
	dirs = append(dirs, bad.detectPackageJSON()...)
	dirs = append(dirs, bad.detectTSConfig()...)
	dirs = append(dirs, bad.detectVite()...)
	dirs = append(dirs, bad.detectNetlify()...)
	if fileExists(filepath.Join(bad.projectRoot, "next.config.js")) ||
		fileExists(filepath.Join(bad.projectRoot, "next.config.mjs")) {
		dirs = append(dirs, ".next")
	}

	var patterns []string
	for _, d := range dirs {
		if p := outputPattern(d); p != "" {
			patterns = append(patterns, p)
		}
	}
	return DeduplicatePatterns(patterns)
}

func outputPattern(dir string) string {
	dir = strings.Trim(strings.TrimSpace(dir), "\"'")
	dir = strings.TrimPrefix(filepath.ToSlash(dir), "./")
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." || strings.HasPrefix(dir, "..") || filepath.IsAbs(dir) {
		return ""
	}
	return "**/" + dir + "/**"
}

// detectPackageJSON reads output flags from package.json scripts
func (bad *BuildArtifactDetector) detectPackageJSON() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}

	var dirs []string
	for _, script := range pkg.Scripts {
		parts := strings.Fields(script)
		for i, part := range parts {
			if name, value, ok := strings.Cut(part, "="); ok && outDirFlags[name] {
				dirs = append(dirs, value)
				continue
			}
			if outDirFlags[part] && i+1 < len(parts) {
				dirs = append(dirs, parts[i+1])
			}
		}
	}
	return dirs
}

// detectTSConfig reads compilerOptions.outDir. tsconfig files with comments
// are not understood and yield nothing.
func (bad *BuildArtifactDetector) detectTSConfig() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "tsconfig.json"))
	if err != nil {
		return nil
	}
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil || tsconfig.CompilerOptions.OutDir == "" {
		return nil
	}
	return []string{tsconfig.CompilerOptions.OutDir}
}

// detectVite looks for `outDir: 'x'` in vite.config.js/ts
func (bad *BuildArtifactDetector) detectVite() []string {
	var dirs []string
	for _, name := range []string{"vite.config.js", "vite.config.ts", "vite.config.mjs"} {
		data, err := os.ReadFile(filepath.Join(bad.projectRoot, name))
		if err != nil {
			continue
		}
		content := string(data)
		idx := strings.Index(content, "outDir")
		if idx == -1 {
			continue
		}
		rest := content[idx+len("outDir"):]
		colon := strings.Index(rest, ":")
		if colon == -1 {
			continue
		}
		rest = strings.TrimSpace(rest[colon+1:])
		if rest == "" || (rest[0] != '\'' && rest[0] != '"') {
			continue
		}
		if end := strings.IndexByte(rest[1:], rest[0]); end > 0 {
			dirs = append(dirs, rest[1:end+1])
		}
	}
	return dirs
}

// detectNetlify reads build.publish from netlify.toml
func (bad *BuildArtifactDetector) detectNetlify() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "netlify.toml"))
	if err != nil {
		return nil
	}
	var netlify struct {
		Build struct {
			Publish string `toml:"publish"`
		} `toml:"build"`
	}
	if toml.Unmarshal(data, &netlify) != nil || netlify.Build.Publish == "" {
		return nil
	}
	return []string{netlify.Build.Publish}
}

// DeduplicatePatterns removes duplicate exclusion patterns
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
