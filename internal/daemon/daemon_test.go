package daemon

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/models"
)

func TestDaemon_StartServeStop(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKDATA", filepath.Join(home, "taskdata"))
	if err := os.MkdirAll(filepath.Join(home, "taskdata"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := models.NewSettings()
	s.Source.Command = `printf '[{"id":1,"description":"water plants"}]'`

	d, err := New(s, 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	errCh := make(chan error, 1)
	if err := d.Start(errCh); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer d.Stop()

	if running, info, err := config.IsDaemonRunning(); err != nil || !running || info.Port != d.Info().Port {
		t.Fatalf("IsDaemonRunning = %v, %+v, %v", running, info, err)
	}

	var body string
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(d.URL())
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				body = string(data)
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(body, "water plants") {
		t.Fatalf("widget body = %q", body)
	}

	snapshot, err := os.ReadFile(filepath.Join(home, config.GlobalDirName, config.SnapshotFileName))
	if err != nil || !strings.Contains(string(snapshot), "water plants") {
		t.Errorf("snapshot file = %q, %v", snapshot, err)
	}

	d.Stop()
	if info, _ := config.LoadDaemonInfo(); info != nil {
		t.Error("daemon.yaml not removed on stop")
	}
	select {
	case err := <-errCh:
		t.Errorf("server error: %v", err)
	default:
	}
}

func TestNew_ReleasesPortOnError(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("TASKDATA", "")

	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := free.Addr().(*net.TCPAddr).Port
	free.Close()

	s := models.NewSettings()
	s.Widget.Output = filepath.Join(t.TempDir(), "widget.html")

	if _, err := New(s, port); err == nil {
		t.Fatal("New should fail without a home directory")
	}

	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("port %d still held after failed New: %v", port, err)
	}
	l.Close()
}
