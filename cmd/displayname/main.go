package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/displayname/internal/config"
	"github.com/standardbeagle/displayname/internal/debug"
	"github.com/standardbeagle/displayname/internal/displayname"
	"github.com/standardbeagle/displayname/internal/mcp"
	"github.com/standardbeagle/displayname/internal/runner"
	"github.com/standardbeagle/displayname/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "displayname:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "displayname",
		Usage:                  "Add displayName assignments to React components",
		UsageText:              "displayname [flags] [paths...]   (no path or - reads stdin)",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: .displayname.kdl, displayname.toml or .displayname.yaml in the root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root; filters and hooks resolve against it (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "only",
				Usage: "Process only files matching these globs (replaces config)",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "Skip files matching these globs (replaces config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files from directory walks (added to config)",
			},
			&cli.StringFlag{
				Name:  "rename",
				Usage: "Rename hook: a .js/.mjs/.cjs module, a Go plugin (.so) or an executable",
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"o"},
				Usage:   "Write annotated files below this directory, mirroring the root",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Rewrite files in place",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Files processed in parallel (default: CPUs - 1)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-annotate files as they change",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Print detected components without writing anything",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
			&cli.StringFlag{
				Name:  "filename",
				Usage: "Name used for source read from stdin (grammar and only/ignore)",
			},
			&cli.BoolFlag{
				Name:   "debug-log",
				Usage:  "Write debug output to a file in the temp directory",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				debug.EnableDebug = "true"
				fmt.Fprintln(c.App.ErrWriter, "debug log:", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Start MCP (Model Context Protocol) server with stdio transport",
				Action: mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
		Action: annotateCommand,
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = abs
	}

	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		if root != "" {
			loaded.Project.Root = root
		}
		loaded.EnrichExclusions()
		cfg = loaded
	} else {
		if root == "" {
			root = "."
		}
		loaded, err := config.Load(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("only") {
		cfg.Only = c.StringSlice("only")
	}
	if c.IsSet("ignore") {
		cfg.Ignore = c.StringSlice("ignore")
	}
	cfg.Exclude = append(cfg.Exclude, c.StringSlice("exclude")...)
	if rename := c.String("rename"); rename != "" {
		abs, err := filepath.Abs(rename)
		if err != nil {
			return nil, err
		}
		cfg.Rename = abs
	}
	if outDir := c.String("out-dir"); outDir != "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return nil, err
		}
		cfg.Output.Dir = abs
		cfg.Output.InPlace = false
	}
	if c.Bool("write") {
		cfg.Output.InPlace = true
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}

	if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func annotateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	paths := c.Args().Slice()
	fromStdin := len(paths) == 0 || (len(paths) == 1 && paths[0] == "-")
	if fromStdin && c.Bool("watch") {
		return errors.New("--watch needs file or directory arguments")
	}

	// JSON output is the report, so nothing else may go to stdout
	list := c.Bool("list") || (c.Bool("json") && cfg.Output.Dir == "" && !cfg.Output.InPlace && !fromStdin)
	r, err := runner.New(cfg, runner.Options{Stdout: c.App.Writer, List: list})
	if err != nil {
		return err
	}
	defer r.Close()

	if fromStdin {
		return annotateStdin(c, r)
	}

	// arguments are relative to the working directory, not the root
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			paths[i] = abs
		}
	}

	if c.Bool("watch") {
		if r.Mode() == runner.ModeStdout {
			return errors.New("--watch needs --write, --out-dir or --list")
		}
		return watch(c, r, paths)
	}

	report, err := r.Run(c.Context, paths)
	if err != nil {
		return err
	}
	if err := printReport(c, r.Mode(), report); err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		// the errors themselves were printed per file
		return fmt.Errorf("%d file(s) failed", len(report.Errors))
	}
	return nil
}

func annotateStdin(c *cli.Context, r *runner.Runner) error {
	src, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	res, err := r.Transform(src, c.String("filename"))
	if err != nil {
		return err
	}

	name := c.String("filename")
	if name == "" {
		name = displayname.SourceSentinel
	}
	switch {
	case c.Bool("json"):
		return writeJSON(c.App.Writer, struct {
			Filename string `json:"filename"`
			Code     string `json:"code"`
			*displayname.Result
		}{name, string(res.Code), res})
	case c.Bool("list"):
		printAnnotations(c.App.Writer, name, res.Annotations)
		return nil
	default:
		_, err := c.App.Writer.Write(res.Code)
		return err
	}
}

func watch(c *cli.Context, r *runner.Runner, paths []string) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := r.Run(ctx, paths)
	if err != nil {
		return err
	}
	if err := printReport(c, r.Mode(), report); err != nil {
		return err
	}

	w, err := runner.NewWatcher(r, func(report *runner.Report, err error) {
		if err != nil {
			fmt.Fprintln(c.App.ErrWriter, "displayname:", err)
			return
		}
		if len(report.Files) > report.Cached {
			_ = printReport(c, r.Mode(), report)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(paths); err != nil {
		_ = w.Stop()
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, "watching for changes, press Ctrl+C to stop")

	<-ctx.Done()
	return w.Stop()
}

// printReport lists annotations or per-file errors and ends with a summary
// on stderr, except in JSON mode where the report is the whole output
func printReport(c *cli.Context, mode runner.Mode, report *runner.Report) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}

	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", f.Rel, f.Err)
			continue
		}
		if mode == runner.ModeList {
			printAnnotations(c.App.Writer, f.Rel, f.Annotations)
		}
	}
	if mode != runner.ModeStdout {
		fmt.Fprintf(c.App.ErrWriter, "%d component(s) in %d file(s), %d changed, %d skipped, %d error(s)\n",
			report.Annotations, len(report.Files), report.Changed, report.Skipped, len(report.Errors))
	}
	return nil
}

func printAnnotations(w io.Writer, file string, annotations []displayname.Annotation) {
	for _, a := range annotations {
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n", file, a.Line, a.Column, a.Name, a.Kind)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	logger := mcp.NewDiagnosticLogger(true)
	defer logger.Close()

	server, err := mcp.NewServer(cfg, nil, logger)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	return nil
}
