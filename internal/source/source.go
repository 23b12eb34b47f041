// Package source obtains task export payloads.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Source yields one raw export payload per call.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// Command runs an export command line through the shell.
type Command struct {
	Line    string
	Timeout time.Duration // 0 = no timeout beyond ctx
}

// NewCommand creates a Command source.
func NewCommand(line string, timeout time.Duration) *Command {
	return &Command{Line: line, Timeout: timeout}
}

func (c *Command) String() string {
	return c.Line
}

// Fetch runs the command and returns its standard output.
func (c *Command) Fetch(ctx context.Context) ([]byte, error) {
	if strings.TrimSpace(c.Line) == "" {
		return nil, errors.New("no export command configured")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := shellCommand(ctx, c.Line)
	cmd.Env = exportEnv(os.Environ())
	// Children of the shell may hold stdout open after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", c.Line, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.Line, err, firstLine(msg))
		}
		return nil, fmt.Errorf("%s: %w", c.Line, err)
	}
	return stdout.Bytes(), nil
}

func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", line)
}

// exportEnv makes package-manager install locations visible to the command,
// since widget hosts and login items often start with a minimal PATH.
func exportEnv(env []string) []string {
	path := ""
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}
	for _, p := range []string{"/opt/homebrew/bin", "/opt/local/bin", "/usr/local/bin"} {
		if !containsPath(path, p) {
			if path == "" {
				path = p
			} else {
				path = path + string(os.PathListSeparator) + p
			}
		}
	}
	return setEnv(env, "PATH", path)
}

func containsPath(list, dir string) bool {
	for _, p := range strings.Split(list, string(os.PathListSeparator)) {
		if p == dir {
			return true
		}
	}
	return false
}

// setEnv sets or replaces an environment variable in a slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// File reads a payload from a file, or from stdin when Path is "-".
type File struct {
	Path  string
	Stdin io.Reader
}

// NewFile creates a File source reading stdin for "-".
func NewFile(path string) *File {
	return &File{Path: path, Stdin: os.Stdin}
}

func (f *File) String() string {
	if f.Path == "-" {
		return "stdin"
	}
	return f.Path
}

// Fetch reads the whole file.
func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if f.Path == "-" {
		data, err := io.ReadAll(f.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return data, nil
}
