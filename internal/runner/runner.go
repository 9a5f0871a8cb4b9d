// Package runner drives the annotator over files and directory trees:
// expanding paths, transforming files in parallel and writing the results.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/displayname/internal/config"
	"github.com/standardbeagle/displayname/internal/debug"
	"github.com/standardbeagle/displayname/internal/displayname"
	dnerrors "github.com/standardbeagle/displayname/internal/errors"
	"github.com/standardbeagle/displayname/internal/hooks"
	"github.com/standardbeagle/displayname/internal/security"
	"github.com/standardbeagle/displayname/pkg/pathutil"
)

// Mode selects where annotated code goes
type Mode int

const (
	// ModeStdout prints the code of a single file
	ModeStdout Mode = iota
	// ModeOutDir mirrors the tree below the project root into Output.Dir
	ModeOutDir
	// ModeInPlace rewrites changed files
	ModeInPlace
	// ModeList only reports what would be annotated
	ModeList
)

// ErrMultipleToStdout is returned when more than one file would be printed
var ErrMultipleToStdout = errors.New("more than one input file: use --out-dir or --write")

// Options configures a Runner beyond its Config
type Options struct {
	// Rename overrides the hook named in the config
	Rename hooks.Renamer
	// Stdout receives code in ModeStdout. Defaults to os.Stdout.
	Stdout io.Writer
	// List reports components without writing anything
	List bool
}

// Runner transforms files according to a validated Config. Run may be
// called concurrently; the watcher does so when batches overlap.
type Runner struct {
	cfg  *config.Config
	root string
	mode Mode
	fs   afs.Service

	rename hooks.Renamer
	hook   hooks.Hook // loaded by New, closed by Close

	cache     *Cache
	validator *security.FileValidator

	outMu  sync.Mutex
	stdout io.Writer
}

// FileResult is the outcome for one file
type FileResult struct {
	Path        string                   `json:"path"`
	Rel         string                   `json:"rel"`
	Annotations []displayname.Annotation `json:"annotations,omitempty"`
	Skipped     bool                     `json:"skipped,omitempty"`
	Changed     bool                     `json:"changed,omitempty"`
	Cached      bool                     `json:"cached,omitempty"`
	Error       string                   `json:"error,omitempty"`

	Err error `json:"-"`
}

// Report summarizes one Run
type Report struct {
	Files       []FileResult `json:"files"`
	Changed     int          `json:"changed"`
	Skipped     int          `json:"skipped"`
	Cached      int          `json:"cached"`
	Annotations int          `json:"annotations"`

	Errors []error `json:"-"`
}

// Err returns the per-file errors as one error, or nil
func (r *Report) Err() error {
	return dnerrors.NewMultiError(r.Errors).ErrorOrNil()
}

func newReport(results []FileResult) *Report {
	report := &Report{Files: results}
	for _, res := range results {
		switch {
		case res.Err != nil:
			report.Errors = append(report.Errors, res.Err)
		case res.Cached:
			report.Cached++
		case res.Skipped:
			report.Skipped++
		}
		if res.Changed {
			report.Changed++
		}
		report.Annotations += len(res.Annotations)
	}
	return report
}

// New creates a runner for cfg, loading the rename hook it names unless
// opts supplies one. cfg must have passed config.ValidateConfig.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	root, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		return nil, dnerrors.NewFileError("resolve", cfg.Project.Root, err)
	}

	r := &Runner{
		cfg:    cfg,
		root:   root,
		fs:        afs.New(),
		validator: security.NewFileValidator(int64(cfg.Performance.ValidateThresholdKB)),
		rename:    opts.Rename,
		stdout:    opts.Stdout,
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}

	switch {
	case opts.List:
		r.mode = ModeList
	case cfg.Output.Dir != "":
		r.mode = ModeOutDir
	case cfg.Output.InPlace:
		r.mode = ModeInPlace
	default:
		r.mode = ModeStdout
	}
	r.cache = NewCache(r.settingsKey())

	if r.rename == nil && cfg.Rename != "" {
		hook, err := hooks.Load(cfg.Rename, root)
		if err != nil {
			return nil, err
		}
		debug.LogHook("loaded rename hook %s\n", hook.Path())
		r.hook = hook
		r.rename = hook
	}
	return r, nil
}

// settingsKey captures everything besides file content that shapes output
func (r *Runner) settingsKey() string {
	return strings.Join([]string{
		fmt.Sprint(r.mode),
		r.cfg.Output.Dir,
		r.cfg.Rename,
		strings.Join(r.cfg.Only, ","),
		strings.Join(r.cfg.Ignore, ","),
	}, "|")
}

// Mode reports where the runner sends annotated code
func (r *Runner) Mode() Mode { return r.mode }

// Root is the absolute project root
func (r *Runner) Root() string { return r.root }

// Close releases the hook loaded by New
func (r *Runner) Close() error {
	if r.hook != nil {
		return r.hook.Close()
	}
	return nil
}

// Run transforms every file named by paths. Directories are walked. Per-file
// failures are collected in the report; the returned error is reserved for
// problems that stop the whole run.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	files, err := r.Expand(ctx, paths)
	if err != nil {
		return nil, err
	}
	if r.mode == ModeStdout && len(files) > 1 {
		return nil, ErrMultipleToStdout
	}
	return r.process(ctx, files)
}

// Transform annotates a single in-memory source, e.g. one read from stdin.
// filename may be empty; it then only feeds filtering and grammar choice.
func (r *Runner) Transform(src []byte, filename string) (*displayname.Result, error) {
	if filename != "" {
		filename = pathutil.ToAbsolute(filename, r.root)
	}
	return displayname.Transform(src, r.options(filename))
}

func (r *Runner) options(filename string) displayname.Options {
	return displayname.Options{
		Filename: filename,
		Cwd:      r.root,
		Only:     r.cfg.Only,
		Ignore:   r.cfg.Ignore,
		Rename:   r.rename,
	}
}

// Expand resolves paths to a sorted list of absolute file names. Named
// files are always included; directories contribute the supported,
// non-excluded files below them.
func (r *Runner) Expand(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		abs := pathutil.ToAbsolute(p, r.root)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, dnerrors.NewFileError("stat", abs, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		found, err := r.walk(ctx, abs)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *Runner) walk(ctx context.Context, dir string) ([]string, error) {
	var files []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		path := url.Path(url.Join(baseURL, parent, info.Name()))
		if info.IsDir() {
			if r.excludedDir(path) {
				debug.LogWatch("skipping directory %s\n", path)
				return false, nil
			}
			return true, nil
		}
		if r.wanted(path) {
			files = append(files, path)
		}
		return true, nil
	}
	if err := r.fs.Walk(ctx, dir, visitor); err != nil {
		return nil, dnerrors.NewFileError("walk", dir, err)
	}
	return files, nil
}

// excludedDir reports directories that Exclude covers entirely, plus the
// output tree so annotated copies are never picked up again
func (r *Runner) excludedDir(path string) bool {
	if r.cfg.Output.Dir != "" {
		out := pathutil.ToAbsolute(r.cfg.Output.Dir, r.root)
		if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
			return true
		}
	}
	rel := pathutil.ToSlashRelative(path, r.root)
	return r.excluded(rel) || r.excluded(rel+"/_")
}

// wanted reports whether a walked file should be transformed
func (r *Runner) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range r.cfg.Extensions {
		if e == ext {
			supported = true
			break
		}
	}
	return supported && !r.excluded(pathutil.ToSlashRelative(path, r.root))
}

func (r *Runner) excluded(rel string) bool {
	for _, pattern := range r.cfg.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (r *Runner) process(ctx context.Context, files []string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]FileResult, len(files))
	workers := min(max(1, r.cfg.Performance.Workers), max(1, len(files)))

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			tr := displayname.NewTransformer()
			defer tr.Close()
			for i := range jobs {
				results[i] = r.processFile(ctx, tr, files[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newReport(results), nil
}

func (r *Runner) processFile(ctx context.Context, tr *displayname.Transformer, path string) FileResult {
	res := FileResult{Path: path, Rel: pathutil.ToSlashRelative(path, r.root)}
	fail := func(err error) FileResult {
		res.Err = err
		res.Error = err.Error()
		debug.LogTransform("%s: %v\n", res.Rel, err)
		return res
	}

	src, err := r.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return fail(dnerrors.NewFileError("read", path, err))
	}
	if err := r.validator.Validate(path, src); err != nil {
		return fail(dnerrors.NewFileError("validate", path, err))
	}

	useCache := r.mode == ModeOutDir || r.mode == ModeInPlace
	fingerprint := r.cache.Fingerprint(src)
	if useCache && r.cache.Unchanged(path, fingerprint) {
		res.Cached = true
		return res
	}

	out, err := tr.Transform(src, r.options(path))
	if err != nil {
		return fail(err)
	}
	res.Annotations = out.Annotations
	res.Skipped = out.Skipped
	res.Changed = out.Changed

	if err := r.emit(ctx, res.Rel, path, src, out); err != nil {
		return fail(err)
	}
	if useCache {
		// in place, the next read returns what was just written
		if r.mode == ModeInPlace {
			fingerprint = r.cache.Fingerprint(out.Code)
		}
		r.cache.Store(path, fingerprint)
	}
	return res
}

func (r *Runner) emit(ctx context.Context, rel, path string, src []byte, out *displayname.Result) error {
	switch r.mode {
	case ModeList:
		return nil
	case ModeStdout:
		r.outMu.Lock()
		defer r.outMu.Unlock()
		if _, err := r.stdout.Write(out.Code); err != nil {
			return dnerrors.NewFileError("write", "<stdout>", err)
		}
		return nil
	case ModeInPlace:
		if !out.Changed || bytes.Equal(out.Code, src) {
			return nil
		}
		return r.write(ctx, path, out.Code, fileMode(path))
	case ModeOutDir:
		if strings.HasPrefix(rel, "../") || filepath.IsAbs(rel) {
			return dnerrors.NewFileError("write", path, errors.New("file is outside the project root"))
		}
		dest := filepath.Join(pathutil.ToAbsolute(r.cfg.Output.Dir, r.root), filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return dnerrors.NewFileError("mkdir", filepath.Dir(dest), err)
		}
		// skipped files keep their original text in the mirror
		return r.write(ctx, dest, out.Code, fileMode(path))
	}
	return fmt.Errorf("unknown output mode %d", r.mode)
}

func (r *Runner) write(ctx context.Context, dest string, code []byte, mode os.FileMode) error {
	if err := r.fs.Upload(ctx, dest, mode, bytes.NewReader(code)); err != nil {
		return dnerrors.NewFileError("write", dest, err)
	}
	debug.LogTransform("wrote %s\n", dest)
	return nil
}

func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
