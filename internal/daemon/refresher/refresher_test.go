package refresher

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
)

type fakeSource struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.payload, f.err
}

func (f *fakeSource) String() string { return "fake" }

func (f *fakeSource) set(payload string, err error) {
	f.mu.Lock()
	f.payload, f.err = []byte(payload), err
	f.mu.Unlock()
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testRefresher struct {
	*Refresher
	src    *fakeSource
	logged []models.RenderLog
	dir    string
	logs   *bytes.Buffer
}

func newTestRefresher(t *testing.T) *testRefresher {
	t.Helper()
	dir := t.TempDir()
	s := models.NewSettings()
	s.Widget.Output = filepath.Join(dir, "widget.html")

	var logs bytes.Buffer
	r, err := New(s, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	tr := &testRefresher{Refresher: r, src: &fakeSource{}, dir: dir, logs: &logs}
	r.SetSource(tr.src)
	r.now = func() time.Time { return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) }
	n := 0
	r.newID = func() string {
		n++
		return strings.Repeat(string(rune('a'+n)), 8)
	}
	r.logWriter = func(entry models.RenderLog, payload []byte) (*models.RenderLog, error) {
		entry.LogID = entry.RenderID
		tr.logged = append(tr.logged, entry)
		return &entry, nil
	}
	return tr
}

func TestRefresh_WritesSnapshotAndStylesheet(t *testing.T) {
	r := newTestRefresher(t)
	r.src.set(`[{"id":1,"description":"pay rent","due":"20260310T000000Z"}]`, nil)

	snap := r.Refresh(context.Background())
	if snap.Result.Kind != render.KindTasks {
		t.Fatalf("Kind = %v, want tasks", snap.Result.Kind)
	}
	if snap.RenderID == "" {
		t.Error("RenderID not set")
	}

	doc, err := os.ReadFile(filepath.Join(r.dir, "widget.html"))
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if !bytes.Equal(doc, snap.Document) || !strings.Contains(string(doc), "pay rent") {
		t.Errorf("snapshot document = %q", doc)
	}
	css, err := os.ReadFile(filepath.Join(r.dir, "style.css"))
	if err != nil || !bytes.Equal(css, render.DefaultStylesheet) {
		t.Errorf("stylesheet not written: %v", err)
	}
	if len(r.logged) != 0 {
		t.Errorf("render logs written on success: %+v", r.logged)
	}
}

func TestRefresh_KeepsCustomStylesheet(t *testing.T) {
	r := newTestRefresher(t)
	css := filepath.Join(r.dir, "style.css")
	if err := os.WriteFile(css, []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r.src.set(`[]`, nil)
	r.Refresh(context.Background())

	data, _ := os.ReadFile(css)
	if string(data) != "body{}" {
		t.Errorf("custom stylesheet overwritten: %q", data)
	}
}

func TestRefresh_SourceFailure(t *testing.T) {
	r := newTestRefresher(t)
	r.src.set("", errors.New("task: command not found"))

	snap := r.Refresh(context.Background())
	if snap.Result.Kind != render.KindError {
		t.Fatalf("Kind = %v, want error", snap.Result.Kind)
	}
	if !strings.Contains(string(snap.Document), "Error: task: command not found.") {
		t.Errorf("document = %s", snap.Document)
	}
	if len(r.logged) != 1 || r.logged[0].Kind != models.FailureSource || r.logged[0].Command != models.DefaultCommand {
		t.Errorf("logged = %+v", r.logged)
	}
}

func TestRefresh_RepeatedFailureLoggedOnce(t *testing.T) {
	r := newTestRefresher(t)
	r.src.set(`{"not":"a list"`, nil)

	r.Refresh(context.Background())
	r.Refresh(context.Background())
	if len(r.logged) != 1 || r.logged[0].Kind != models.FailureMalformed {
		t.Fatalf("logged = %+v, want one malformed entry", r.logged)
	}

	r.src.set(`[]`, nil)
	r.Refresh(context.Background())
	r.src.set(`{"not":"a list"`, nil)
	r.Refresh(context.Background())
	if len(r.logged) != 2 {
		t.Errorf("failure after recovery should be logged again, got %d", len(r.logged))
	}
}

func TestRefresh_NotifiesSubscribers(t *testing.T) {
	r := newTestRefresher(t)
	r.src.set(`[]`, nil)

	var got []Snapshot
	r.OnSnapshot(func(s Snapshot) { got = append(got, s) })
	r.Refresh(context.Background())

	if len(got) != 1 || got[0].Result.Kind != render.KindEmpty {
		t.Fatalf("subscriber got %+v", got)
	}
	last, ok := r.Last()
	if !ok || last.RenderID != got[0].RenderID {
		t.Errorf("Last = %+v, %v", last, ok)
	}
}

func TestRun_TriggerAndCancel(t *testing.T) {
	r := newTestRefresher(t)
	r.src.set(`[]`, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for r.src.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Trigger()
	for r.src.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := r.src.count(); n < 2 {
		t.Errorf("fetches = %d, want at least 2", n)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReload(t *testing.T) {
	r := newTestRefresher(t)

	s := models.NewSettings()
	s.Display.Ordering = "bogus"
	if err := r.Reload(s); err == nil {
		t.Error("Reload accepted an unknown ordering")
	}

	s = models.NewSettings()
	s.Widget.Output = filepath.Join(r.dir, "other.html")
	if err := r.Reload(s); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if r.SnapshotPath() != s.Widget.Output {
		t.Errorf("SnapshotPath = %s, want %s", r.SnapshotPath(), s.Widget.Output)
	}
}
