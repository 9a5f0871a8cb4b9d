package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/internal/syntax"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return dnerrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}

	for field, patterns := range map[string][]string{
		"only":    cfg.Only,
		"ignore":  cfg.Ignore,
		"exclude": cfg.Exclude,
	} {
		if err := validatePatterns(field, patterns); err != nil {
			return err
		}
	}

	if err := v.validateExtensions(cfg); err != nil {
		return err
	}

	if err := v.validateOutput(&cfg.Output); err != nil {
		return dnerrors.NewConfigError("output", cfg.Output.Dir, err)
	}

	if cfg.Performance.Workers < 0 {
		return dnerrors.NewConfigError("performance.workers", fmt.Sprint(cfg.Performance.Workers),
			errors.New("workers cannot be negative"))
	}
	if cfg.Performance.WatchDebounceMs < 0 {
		return dnerrors.NewConfigError("performance.watch_debounce_ms", fmt.Sprint(cfg.Performance.WatchDebounceMs),
			errors.New("debounce cannot be negative"))
	}
	if cfg.Performance.ValidateThresholdKB < 0 {
		return dnerrors.NewConfigError("performance.validate_threshold_kb", fmt.Sprint(cfg.Performance.ValidateThresholdKB),
			errors.New("threshold cannot be negative"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(strings.ToLower(p)) {
			return dnerrors.NewConfigError(field, p, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// validateExtensions normalizes extensions to ".ext" and rejects ones
// without a grammar
func (v *Validator) validateExtensions(cfg *Config) error {
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := syntax.LanguageForPath("file" + ext); !ok {
			return dnerrors.NewConfigError("extensions", ext,
				fmt.Errorf("unsupported extension, expected one of %s", strings.Join(syntax.SupportedExtensions(), " ")))
		}
		cfg.Extensions[i] = ext
	}
	return nil
}

func (v *Validator) validateOutput(out *Output) error {
	if out.InPlace && out.Dir != "" {
		return errors.New("output dir and in_place are mutually exclusive")
	}
	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// leave one core for the system
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Performance.WatchDebounceMs == 0 {
		cfg.Performance.WatchDebounceMs = 200
	}
	if cfg.Performance.ValidateThresholdKB == 0 {
		cfg.Performance.ValidateThresholdKB = 512
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = syntax.SupportedExtensions()
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
