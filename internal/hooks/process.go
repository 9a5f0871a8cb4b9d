package hooks

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/displayname/internal/debug"
	dnerrors "github.com/standardbeagle/displayname/internal/errors"
)

// closeTimeout bounds how long Close waits for a hook to exit after its
// stdin is closed
const closeTimeout = 3 * time.Second

const stderrTailSize = 4096

// nodeShim imports the hook module, picks its default export and answers
// one JSON request per line
const nodeShim = `
const { pathToFileURL } = require('url');
const readline = require('readline');
const target = process.argv[process.argv.length - 1];
const reply = (obj) => process.stdout.write(JSON.stringify(obj) + '\n');
import(pathToFileURL(target).href).then((mod) => {
  let fn = mod.default;
  if (fn && typeof fn !== 'function' && typeof fn.default === 'function') fn = fn.default;
  if (typeof fn !== 'function') {
    reply({ error: 'module has no default export function' });
    process.exit(1);
  }
  reply({ ready: true });
  const rl = readline.createInterface({ input: process.stdin });
  rl.on('line', async (line) => {
    try {
      const req = JSON.parse(line);
      const name = await fn(req.name, { filename: req.filename, cwd: req.cwd });
      reply({ name: typeof name === 'string' ? name : name ? String(name) : '' });
    } catch (err) {
      reply({ error: String((err && err.message) || err) });
    }
  });
}, (err) => {
  reply({ error: String((err && err.message) || err) });
  process.exit(1);
});
`

type request struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Cwd      string `json:"cwd"`
}

type response struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	Ready bool   `json:"ready,omitempty"`
}

// stderrTail keeps the last bytes a hook wrote to stderr for error messages
type stderrTail struct {
	mu  sync.Mutex
	buf []byte
}

func (s *stderrTail) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	if len(s.buf) > stderrTailSize {
		s.buf = s.buf[len(s.buf)-stderrTailSize:]
	}
	return len(p), nil
}

func (s *stderrTail) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(string(s.buf))
}

// processHook talks to a long-lived child process. Calls are serialized.
type processHook struct {
	path   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *stderrTail

	mu     sync.Mutex
	closed bool
}

func startNodeHook(path, cwd string) (Hook, error) {
	node, err := exec.LookPath("node")
	if err != nil {
		return nil, dnerrors.NewHookError("load", path, fmt.Errorf("node runtime not found: %w", err))
	}
	return startProcessHook(path, []string{node, "-e", nodeShim, path}, cwd, true)
}

func startProcessHook(path string, argv []string, cwd string, handshake bool) (Hook, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = cwd

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, dnerrors.NewHookError("load", path, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, dnerrors.NewHookError("load", path, err)
	}
	tail := &stderrTail{}
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		return nil, dnerrors.NewHookError("load", path, err)
	}

	h := &processHook{
		path:   path,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		stderr: tail,
	}

	if handshake {
		resp, err := h.readResponse()
		if err == nil && resp.Error != "" {
			err = errors.New(resp.Error)
		}
		if err == nil && !resp.Ready {
			err = errors.New("hook did not report ready")
		}
		if err != nil {
			_ = h.Close()
			return nil, dnerrors.NewHookError("load", path, err)
		}
	}

	debug.LogHook("started hook process %s (pid %d)\n", path, cmd.Process.Pid)
	return h, nil
}

func (h *processHook) Path() string { return h.path }

// Rename sends one request and waits for its answer
func (h *processHook) Rename(name string, info Info) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", dnerrors.NewHookError("call", h.path, errors.New("hook is closed"))
	}

	line, err := json.Marshal(request{Name: name, Filename: info.Filename, Cwd: info.Cwd})
	if err != nil {
		return "", dnerrors.NewHookError("call", h.path, err)
	}
	if _, err := h.stdin.Write(append(line, '\n')); err != nil {
		return "", dnerrors.NewHookError("call", h.path, h.withStderr(err))
	}

	resp, err := h.readResponse()
	if err != nil {
		return "", dnerrors.NewHookError("call", h.path, err)
	}
	if resp.Error != "" {
		return "", dnerrors.NewHookError("call", h.path, errors.New(resp.Error))
	}

	debug.LogHook("%s -> %q\n", name, resp.Name)
	return resp.Name, nil
}

func (h *processHook) readResponse() (response, error) {
	var resp response
	line, err := h.stdout.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return resp, h.withStderr(err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("invalid hook response %q: %w", strings.TrimSpace(string(line)), err)
	}
	return resp, nil
}

func (h *processHook) withStderr(err error) error {
	if tail := h.stderr.String(); tail != "" {
		return fmt.Errorf("%w (stderr: %s)", err, tail)
	}
	return err
}

// Close ends the hook's input and waits for it to exit, killing it when it
// does not exit in time
func (h *processHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	_ = h.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return dnerrors.NewHookError("close", h.path, h.withStderr(err))
		}
		return nil
	case <-time.After(closeTimeout):
		_ = h.cmd.Process.Kill()
		<-done
		debug.LogHook("killed hook process %s after %s\n", h.path, closeTimeout)
		return nil
	}
}
