package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/displayname/internal/debug"
	"github.com/standardbeagle/displayname/internal/displayname"
	"github.com/standardbeagle/displayname/internal/version"
	"github.com/standardbeagle/displayname/pkg/pathutil"
)

// AnnotateResponse is returned by the annotate tool
type AnnotateResponse struct {
	Code        string                   `json:"code"`
	Annotations []displayname.Annotation `json:"annotations"`
	Changed     bool                     `json:"changed"`
	Skipped     bool                     `json:"skipped"`
}

// ComponentsResponse is returned by the components tool
type ComponentsResponse struct {
	Components []displayname.Annotation `json:"components"`
	Count      int                      `json:"count"`
	Skipped    bool                     `json:"skipped"`
}

type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("internal error: %v", e.value)
}

var errSourceRequired = errors.New("source is required")

func decodeAnnotateParams(req *mcp.CallToolRequest) (*AnnotateParams, error) {
	var params AnnotateParams
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil, errSourceRequired
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if !params.hasSource {
		return nil, errSourceRequired
	}
	return &params, nil
}

// transform runs the annotator with the configured filters unless the call
// brings its own
func (s *Server) transform(params *AnnotateParams) (*displayname.Result, error) {
	opts := displayname.Options{
		Cwd:    s.root,
		Only:   s.cfg.Only,
		Ignore: s.cfg.Ignore,
		Rename: s.rename,
	}
	if params.Filename != "" {
		opts.Filename = pathutil.ToAbsolute(params.Filename, s.root)
	}
	if params.Only != nil {
		opts.Only = params.Only
	}
	if params.Ignore != nil {
		opts.Ignore = params.Ignore
	}
	debug.LogMCP("transform filename=%q bytes=%d\n", params.Filename, len(params.Source))
	return displayname.Transform([]byte(params.Source), opts)
}

func (s *Server) handleAnnotate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("annotate", func() (*mcp.CallToolResult, error) {
		params, err := decodeAnnotateParams(req)
		if err != nil {
			return createErrorResponse("annotate", err)
		}
		res, err := s.transform(params)
		if err != nil {
			s.diagnosticLogger.Printf("annotate %q failed: %v", params.Filename, err)
			return createErrorResponse("annotate", err)
		}

		result, err := createJSONResponse(AnnotateResponse{
			Code:        string(res.Code),
			Annotations: nonNil(res.Annotations),
			Changed:     res.Changed,
			Skipped:     res.Skipped,
		})
		if err != nil {
			return nil, err
		}
		addWarningsToResponse(result, params.Warnings)
		return result, nil
	})
}

func (s *Server) handleComponents(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("components", func() (*mcp.CallToolResult, error) {
		params, err := decodeAnnotateParams(req)
		if err != nil {
			return createErrorResponse("components", err)
		}
		res, err := s.transform(params)
		if err != nil {
			return createErrorResponse("components", err)
		}

		result, err := createJSONResponse(ComponentsResponse{
			Components: nonNil(res.Annotations),
			Count:      len(res.Annotations),
			Skipped:    res.Skipped,
		})
		if err != nil {
			return nil, err
		}
		addWarningsToResponse(result, params.Warnings)
		return result, nil
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("info", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	switch tool := strings.ToLower(strings.TrimSpace(params.Tool)); tool {
	case "":
		return createJSONResponse(map[string]interface{}{
			"server": "displayname",
			"tools": map[string]string{
				"annotate":   "Insert X.displayName = \"X\" after every React component declaration",
				"components": "List the components that annotate would name",
				"info":       "This help; {\"tool\": \"version\"} for build details",
			},
		})
	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_version": version.FullInfo(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
			"rename_hook":    s.cfg.Rename,
		})
	case "annotate", "components":
		return createJSONResponse(map[string]interface{}{
			"tool": tool,
			"parameters": map[string]string{
				"source":   "required, the source text",
				"filename": "optional, relative to the project root; .ts/.tsx select TypeScript",
				"only":     "optional glob list; replaces the configured only patterns",
				"ignore":   "optional glob list; replaces the configured ignore patterns",
			},
			"example": map[string]interface{}{
				"source":   "const Button = () => <button/>;",
				"filename": "src/Button.jsx",
			},
		})
	default:
		return createErrorResponse("info", fmt.Errorf("unknown tool %q", params.Tool))
	}
}

func nonNil(a []displayname.Annotation) []displayname.Annotation {
	if a == nil {
		return []displayname.Annotation{}
	}
	return a
}
