package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/displayname/internal/config"
	"github.com/standardbeagle/displayname/internal/hooks"
)

func newTestServer(t *testing.T, edit func(*config.Config), rename hooks.Renamer) *Server {
	t.Helper()
	cfg := config.Default(t.TempDir())
	if edit != nil {
		edit(cfg)
	}
	require.NoError(t, config.ValidateConfig(cfg))
	s, err := NewServer(cfg, rename, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// callTool runs a handler the way the SDK would and decodes its JSON text
func callTool(t *testing.T, s *Server, tool string, args interface{}) (*mcp.CallToolResult, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: tool, Arguments: raw}}

	var result *mcp.CallToolResult
	switch tool {
	case "annotate":
		result, err = s.handleAnnotate(context.Background(), req)
	case "components":
		result, err = s.handleComponents(context.Background(), req)
	case "info":
		result, err = s.handleInfo(context.Background(), req)
	default:
		t.Fatalf("unknown tool %s", tool)
	}
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return result, decoded
}

func TestAnnotateTool(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, body := callTool(t, s, "annotate", map[string]interface{}{
		"source": "const Button = () => <button/>;\n",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "const Button = () => <button/>;\nButton.displayName = \"Button\";\n", body["code"])
	assert.Equal(t, true, body["changed"])

	annotations := body["annotations"].([]interface{})
	require.Len(t, annotations, 1)
	first := annotations[0].(map[string]interface{})
	assert.Equal(t, "Button", first["name"])
	assert.Equal(t, "arrow", first["kind"])
	assert.Equal(t, float64(1), first["line"])
}

func TestAnnotateTool_TypeScriptFilename(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, body := callTool(t, s, "annotate", map[string]interface{}{
		"source":   "const Card = (p: {title: string}) => <h1>{p.title}</h1>;\n",
		"filename": "src/Card.tsx",
	})
	assert.False(t, result.IsError)
	assert.Contains(t, body["code"], `Card.displayName = "Card";`)
}

func TestAnnotateTool_Filters(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Ignore = []string{"legacy/**"} }, nil)
	src := "const A = () => <div/>;\n"

	_, body := callTool(t, s, "annotate", map[string]interface{}{"source": src, "filename": "legacy/A.jsx"})
	assert.Equal(t, true, body["skipped"])
	assert.Equal(t, src, body["code"])

	// call patterns replace the configured ones
	_, body = callTool(t, s, "annotate", map[string]interface{}{
		"source": src, "filename": "legacy/A.jsx", "ignore": []string{},
	})
	assert.Equal(t, false, body["skipped"])

	_, body = callTool(t, s, "annotate", map[string]interface{}{
		"source": src, "filename": "app/A.jsx", "only": "lib/**, src/**",
	})
	assert.Equal(t, true, body["skipped"])
}

func TestAnnotateTool_Rename(t *testing.T) {
	rename := hooks.RenameFunc(func(name string, info hooks.Info) string {
		return strings.ToUpper(name)
	})
	s := newTestServer(t, nil, rename)

	_, body := callTool(t, s, "annotate", map[string]interface{}{"source": "function foo() { return <a/>; }\n"})
	assert.Contains(t, body["code"], `foo.displayName = "FOO";`)
}

func TestAnnotateTool_Errors(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name     string
		args     interface{}
		contains string
		location bool
	}{
		{"missing source", map[string]interface{}{"filename": "a.jsx"}, "source is required", false},
		{"parse error", map[string]interface{}{"source": "const = <div>;"}, "parse error", true},
		{"bad pattern", map[string]interface{}{"source": "", "filename": "a.js", "only": []string{"[a-"}}, "only", false},
		{"wrong type", map[string]interface{}{"source": 12}, "invalid parameters", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, body := callTool(t, s, "annotate", tt.args)
			assert.True(t, result.IsError)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tt.contains)
			if tt.location {
				assert.NotNil(t, body["location"])
				assert.NotEmpty(t, body["suggestions"])
			}
		})
	}
}

func TestAnnotateTool_UnknownFieldsBecomeWarnings(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, body := callTool(t, s, "annotate", map[string]interface{}{
		"source": "const A = () => <div/>;", "file": "a.jsx",
	})
	assert.False(t, result.IsError)
	warnings := body["warnings"].([]interface{})
	require.Len(t, warnings, 1)
	assert.Equal(t, "file", warnings[0].(map[string]interface{})["name"])
}

func TestComponentsTool(t *testing.T) {
	s := newTestServer(t, nil, nil)
	src := "class Panel extends React.Component {\n  render() { return <div/>; }\n}\nconst helper = () => 1;\nexport default () => <span/>;\n"

	result, body := callTool(t, s, "components", map[string]interface{}{"source": src})
	assert.False(t, result.IsError)
	assert.Equal(t, float64(2), body["count"])

	components := body["components"].([]interface{})
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{"Panel", "_default"}, names)

	_, body = callTool(t, s, "components", map[string]interface{}{"source": "const x = 1;"})
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["components"])
}

func TestInfoTool(t *testing.T) {
	s := newTestServer(t, nil, nil)

	_, body := callTool(t, s, "info", map[string]interface{}{})
	assert.Contains(t, body["tools"], "annotate")

	_, body = callTool(t, s, "info", map[string]interface{}{"tool": "version"})
	assert.Contains(t, body["server_version"], "displayname")

	_, body = callTool(t, s, "info", map[string]interface{}{"tool": "Components"})
	assert.Equal(t, "components", body["tool"])

	result, _ := callTool(t, s, "info", map[string]interface{}{"tool": "search"})
	assert.True(t, result.IsError)
}

func TestNewServer_HookLoadFailure(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Rename = "missing.js"
	require.NoError(t, config.ValidateConfig(cfg))

	_, err := NewServer(cfg, nil, nil)
	assert.Error(t, err)
}

func TestRecoverFromPanic(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, err := s.recoverFromPanic("annotate", func() (*mcp.CallToolResult, error) {
		panic("boom")
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "internal error: boom")
}

func TestPatternList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`["a/**","b"]`, []string{"a/**", "b"}},
		{`"a/**, b"`, []string{"a/**", "b"}},
		{`null`, nil},
		{``, nil},
	}
	for _, tt := range tests {
		got, err := patternList(json.RawMessage(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := patternList(json.RawMessage(`12`))
	assert.Error(t, err)
}

func TestDiagnosticLogger(t *testing.T) {
	dl := NewDiagnosticLogger(true)
	defer dl.Close()
	dl.Printf("hello %s", "world")
	assert.NotEmpty(t, dl.LogPath())

	var nilLogger *DiagnosticLogger
	nilLogger.Printf("ignored")
	assert.NoError(t, nilLogger.Close())
	assert.Empty(t, nilLogger.LogPath())
}
