package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/models"
)

const daemonBinaryName = "taskwidgetd"

// startDaemon starts the daemon process in the background and waits for it
// to publish daemon.yaml.
func startDaemon(foreground bool) error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	var args []string
	if foreground {
		args = append(args, "--foreground")
	}
	cmd := exec.Command(daemonPath, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	// The daemon outlives this process.
	_ = cmd.Process.Release()

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}
	return fmt.Errorf("daemon failed to start within timeout")
}

// findDaemonBinary locates the taskwidgetd binary: next to this executable
// first, then on PATH, then in ./build.
func findDaemonBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), daemonBinaryName+filepath.Ext(execPath))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(daemonBinaryName); err == nil {
		return path, nil
	}

	if _, err := os.Stat(filepath.Join("build", daemonBinaryName)); err == nil {
		return filepath.Join("build", daemonBinaryName), nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", daemonBinaryName)
}

// DaemonHealth is the daemon's /healthz response.
type DaemonHealth struct {
	OK         bool   `json:"ok"`
	Uptime     string `json:"uptime"`
	RenderID   string `json:"render_id"`
	Kind       string `json:"kind"`
	Tasks      int    `json:"tasks"`
	RenderedAt string `json:"rendered_at"`
}

// fetchDaemonHealth queries a running daemon.
func fetchDaemonHealth(info *models.DaemonInfo) (*DaemonHealth, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(info.URL() + "healthz")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}
	var health DaemonHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &health, nil
}

// requestDaemonRefresh asks a running daemon to refresh now.
func requestDaemonRefresh(info *models.DaemonInfo) error {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post(info.URL()+"refresh", "text/plain", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return nil
}
