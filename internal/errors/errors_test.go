package errors

import (
	"errors"
	"testing"
	"time"
)

func TestTransformError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewTransformError("annotate", underlying).WithFile("src/App.jsx")

	if err.Type != ErrorTypeTransform {
		t.Errorf("Expected Type to be ErrorTypeTransform, got %v", err.Type)
	}

	if err.FilePath != "src/App.jsx" {
		t.Errorf("Expected FilePath to be 'src/App.jsx', got %s", err.FilePath)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "transform annotate failed for src/App.jsx: underlying error"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	noFile := NewTransformError("annotate", underlying)
	if noFile.Error() != "transform annotate failed: underlying error" {
		t.Errorf("Unexpected message without file: %q", noFile.Error())
	}
}

func TestParseError(t *testing.T) {
	underlying := errors.New("syntax error")
	err := NewParseError("/path/to/file.jsx", 10, 5, "<", underlying)

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}

	if err.Line != 10 || err.Column != 5 {
		t.Errorf("Expected Line/Column to be 10:5, got %d:%d", err.Line, err.Column)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `parse error at /path/to/file.jsx:10:5 (near token "<"): syntax error`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	anonymous := NewParseError("", 1, 1, "x", underlying)
	expectedMsg = `parse error at <source>:1:1 (near token "x"): syntax error`
	if anonymous.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, anonymous.Error())
	}
}

func TestUnsupportedNodeError(t *testing.T) {
	err := NewUnsupportedNodeError("arrow_function", 3, 7, "no enclosing variable declarator")

	if !errors.Is(err, ErrUnsupportedNode) {
		t.Errorf("Expected error to match ErrUnsupportedNode")
	}

	wrapped := NewTransformError("annotate", err)
	if !errors.Is(wrapped, ErrUnsupportedNode) {
		t.Errorf("Expected wrapped error to match ErrUnsupportedNode")
	}

	var target *UnsupportedNodeError
	if !errors.As(wrapped, &target) || target.Kind != "arrow_function" {
		t.Errorf("Expected errors.As to find the unsupported node error")
	}

	expectedMsg := "unsupported arrow_function at 3:7: no enclosing variable declarator"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestHookError(t *testing.T) {
	underlying := errors.New("exit status 2")
	err := NewHookError("load", "/repo/rename.js", underlying)

	if err.Type != ErrorTypeHook {
		t.Errorf("Expected Type to be ErrorTypeHook, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "rename hook load failed for /repo/rename.js: exit status 2"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	inline := NewHookError("call", "", underlying)
	if inline.Error() != "rename hook call failed: exit status 2" {
		t.Errorf("Unexpected message without path: %q", inline.Error())
	}
}

func TestFileError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewFileError("read", "/path/to/file", underlying)

	if err.Type != ErrorTypePermission {
		t.Errorf("Expected Type to be ErrorTypePermission, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "file read failed for /path/to/file: permission denied"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestFileErrorWithNotFound(t *testing.T) {
	underlying := errors.New("no such file or directory")
	err := NewFileError("stat", "/missing/file", underlying)

	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected Type to be ErrorTypeFileNotFound, got %v", err.Type)
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("unknown option")
	err := NewConfigError("ignor", "", underlying)

	expectedMsg := `config error for field ignor (value ): unknown option`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	err.WithSuggestion("ignore")
	expectedMsg = `config error for field ignor (value ): unknown option (did you mean "ignore"?)`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})
	if len(multiErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(multiErr.Errors))
	}

	errMsg := multiErr.Error()
	if len(errMsg) < 10 || errMsg[:10] != "3 errors: " {
		t.Errorf("Expected message to start with '3 errors: ', got %q", errMsg)
	}

	if !errors.Is(multiErr, err2) {
		t.Errorf("Expected multi error to match a member error")
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{nil, nil})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}
	if emptyErr.ErrorOrNil() != nil {
		t.Errorf("Expected ErrorOrNil to return nil for an empty multi error")
	}
	if multiErr.ErrorOrNil() == nil {
		t.Errorf("Expected ErrorOrNil to return the multi error")
	}
}

func TestTimestamp(t *testing.T) {
	err := NewTransformError("test", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}
