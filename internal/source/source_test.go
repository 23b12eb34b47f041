package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell commands are POSIX")
	}
}

func TestCommand_Fetch(t *testing.T) {
	skipOnWindows(t)
	c := NewCommand(`printf '[{"id":1}]'`, 5*time.Second)

	got, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(got) != `[{"id":1}]` {
		t.Errorf("Fetch = %q", got)
	}
}

func TestCommand_FetchFailureIncludesStderr(t *testing.T) {
	skipOnWindows(t)
	c := NewCommand(`echo "No matches." >&2; exit 1`, 5*time.Second)

	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "No matches.") {
		t.Errorf("error = %v, want stderr text", err)
	}
}

func TestCommand_FetchTimeout(t *testing.T) {
	skipOnWindows(t)
	c := NewCommand("sleep 5", 50*time.Millisecond)

	start := time.Now()
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("Fetch did not honor the timeout")
	}
}

func TestCommand_EmptyLine(t *testing.T) {
	if _, err := NewCommand("  ", 0).Fetch(context.Background()); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestExportEnv(t *testing.T) {
	env := exportEnv([]string{"HOME=/home/me", "PATH=/usr/bin:/usr/local/bin"})

	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}
	for _, dir := range []string{"/usr/bin", "/opt/homebrew/bin", "/opt/local/bin"} {
		if !containsPath(path, dir) {
			t.Errorf("PATH %q missing %s", path, dir)
		}
	}
	if strings.Count(path, "/usr/local/bin") != 1 {
		t.Errorf("PATH %q duplicates /usr/local/bin", path)
	}
}

func TestFile_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFile(path).Fetch(context.Background())
	if err != nil || string(got) != "[]" {
		t.Errorf("Fetch = %q, %v", got, err)
	}

	if _, err := NewFile(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFile_FetchStdin(t *testing.T) {
	f := &File{Path: "-", Stdin: strings.NewReader(`[{"id":2}]`)}
	got, err := f.Fetch(context.Background())
	if err != nil || string(got) != `[{"id":2}]` {
		t.Errorf("Fetch = %q, %v", got, err)
	}
	if f.String() != "stdin" {
		t.Errorf("String = %q", f.String())
	}
}
