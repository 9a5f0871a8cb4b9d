// Package mcp exposes the annotator as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"path/filepath"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/displayname/internal/config"
	"github.com/standardbeagle/displayname/internal/hooks"
	"github.com/standardbeagle/displayname/internal/version"
)

// Server serves the annotate, components and info tools
type Server struct {
	server *mcp.Server
	cfg    *config.Config
	root   string

	rename hooks.Renamer
	hook   hooks.Hook // loaded from cfg.Rename, closed by Close

	diagnosticLogger *DiagnosticLogger
}

// NewServer creates a server for cfg. rename overrides the hook the config
// names; logger may be nil to discard diagnostics.
func NewServer(cfg *config.Config, rename hooks.Renamer, logger *DiagnosticLogger) (*Server, error) {
	if logger == nil {
		logger = NoOpLogger
	}
	root, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:              cfg,
		root:             root,
		rename:           rename,
		diagnosticLogger: logger,
	}
	if s.rename == nil && cfg.Rename != "" {
		hook, err := hooks.Load(cfg.Rename, root)
		if err != nil {
			return nil, err
		}
		s.hook = hook
		s.rename = hook
		logger.Printf("Loaded rename hook %s", hook.Path())
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "displayname-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized for %s", root)
	return s, nil
}

func annotateSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"source": {
				Type:        "string",
				Description: "JavaScript or TypeScript source text",
			},
			"filename": {
				Type:        "string",
				Description: "Path of the source relative to the project root. Picks the grammar (.ts/.tsx) and feeds only/ignore filtering.",
			},
			"only": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Glob patterns; when set, only matching filenames are processed",
			},
			"ignore": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Glob patterns; matching filenames are left untouched",
			},
		},
		Required: []string{"source"},
	}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the displayname tools and server version. Use {\"tool\": \"annotate\"} for details on one tool.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name (annotate, components, version)",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "annotate",
		Description: "Add displayName assignments to every React component in a source file. Returns the new code and one entry per annotation.",
		InputSchema: annotateSchema(),
	}, s.handleAnnotate)

	s.server.AddTool(&mcp.Tool{
		Name:        "components",
		Description: "List the React components displayName would annotate, with positions and names, without changing the source.",
		InputSchema: annotateSchema(),
	}, s.handleComponents)
}

// recoverFromPanic turns a panicking handler into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, panicError{value: r})
		}
	}()
	return handler()
}

// Start serves over stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the rename hook loaded by NewServer
func (s *Server) Close() error {
	s.diagnosticLogger.Printf("MCP server shutdown")
	if s.hook != nil {
		return s.hook.Close()
	}
	return nil
}
