package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result with IsError
// set, so the client model sees the error and can correct its call
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if loc := errorLocation(err); loc != nil {
		errorData["location"] = loc
	}
	if suggestions := errorSuggestions(err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// errorLocation extracts a source position from parse and node errors
func errorLocation(err error) map[string]interface{} {
	var perr *dnerrors.ParseError
	if errors.As(err, &perr) {
		return map[string]interface{}{"line": perr.Line, "column": perr.Column, "token": perr.Token}
	}
	var uerr *dnerrors.UnsupportedNodeError
	if errors.As(err, &uerr) {
		return map[string]interface{}{"line": uerr.Line, "column": uerr.Column, "kind": uerr.Kind}
	}
	return nil
}

func errorSuggestions(err error) []string {
	var perr *dnerrors.ParseError
	var cerr *dnerrors.ConfigError
	switch {
	case errors.As(err, &perr):
		return []string{
			"Pass a filename with a .ts or .tsx extension for TypeScript sources",
			"Check the source for syntax errors near the reported position",
		}
	case errors.As(err, &cerr):
		return []string{"Glob patterns use doublestar syntax, e.g. 'src/**/*.jsx'"}
	case errors.Is(err, dnerrors.ErrUnsupportedNode):
		return []string{"Bind the component to a variable or give it a name"}
	}
	return nil
}

// addWarningsToResponse adds a "warnings" field to a JSON response
func addWarningsToResponse(result *mcp.CallToolResult, warnings []UnknownField) {
	if result == nil || len(warnings) == 0 || len(result.Content) == 0 {
		return
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return
	}

	var responseData map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &responseData); err != nil {
		return
	}
	responseData["warnings"] = warnings
	if updatedJSON, err := json.Marshal(responseData); err == nil {
		result.Content[0] = &mcp.TextContent{Text: string(updatedJSON)}
	}
}
