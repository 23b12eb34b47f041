package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/watchfire-io/taskwidget/internal/daemon/refresher"
	"github.com/watchfire-io/taskwidget/internal/render"
)

type fakeSnapshots struct {
	snap      *refresher.Snapshot
	path      string
	triggered int
}

func (f *fakeSnapshots) Last() (refresher.Snapshot, bool) {
	if f.snap == nil {
		return refresher.Snapshot{}, false
	}
	return *f.snap, true
}

func (f *fakeSnapshots) Trigger()             { f.triggered++ }
func (f *fakeSnapshots) SnapshotPath() string { return f.path }

func request(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Widget(t *testing.T) {
	snaps := &fakeSnapshots{path: filepath.Join(t.TempDir(), "widget.html")}
	s := &Server{snapshots: snaps, started: time.Now()}
	h := s.Handler()

	if rec := request(h, http.MethodGet, "/"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before first render: status = %d, want 503", rec.Code)
	}

	snaps.snap = &refresher.Snapshot{
		RenderID: "abc",
		Result:   render.Result{Kind: render.KindEmpty},
		Document: []byte("<p>No tasks found.</p>"),
		At:       time.Now(),
	}
	for _, path := range []string{"/", "/widget.html"} {
		rec := request(h, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rec.Code)
		}
		if rec.Body.String() != "<p>No tasks found.</p>" {
			t.Errorf("GET %s body = %q", path, rec.Body.String())
		}
		if rec.Header().Get("X-Render-ID") != "abc" {
			t.Errorf("GET %s X-Render-ID = %q", path, rec.Header().Get("X-Render-ID"))
		}
	}

	if rec := request(h, http.MethodGet, "/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /missing status = %d, want 404", rec.Code)
	}
}

func TestServer_Stylesheet(t *testing.T) {
	dir := t.TempDir()
	snaps := &fakeSnapshots{path: filepath.Join(dir, "widget.html")}
	h := (&Server{snapshots: snaps}).Handler()

	rec := request(h, http.MethodGet, "/style.css")
	if rec.Body.String() != string(render.DefaultStylesheet) {
		t.Error("missing stylesheet should fall back to the default")
	}

	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("td{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = request(h, http.MethodGet, "/style.css")
	if rec.Body.String() != "td{}" {
		t.Errorf("stylesheet = %q, want the file on disk", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServer_RefreshAndHealth(t *testing.T) {
	snaps := &fakeSnapshots{snap: &refresher.Snapshot{RenderID: "r1", Result: render.Result{Kind: render.KindTasks}}}
	h := (&Server{snapshots: snaps, started: time.Now()}).Handler()

	if rec := request(h, http.MethodPost, "/refresh"); rec.Code != http.StatusAccepted || snaps.triggered != 1 {
		t.Errorf("POST /refresh status = %d, triggered = %d", rec.Code, snaps.triggered)
	}
	if rec := request(h, http.MethodGet, "/refresh"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /refresh status = %d, want 405", rec.Code)
	}

	rec := request(h, http.MethodGet, "/healthz")
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if body["ok"] != true || body["render_id"] != "r1" || body["kind"] != "tasks" {
		t.Errorf("health = %v", body)
	}
}

func TestServer_ServeAndStop(t *testing.T) {
	snaps := &fakeSnapshots{snap: &refresher.Snapshot{Document: []byte("ok")}}
	s, err := New(0, snaps)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.Port() == 0 {
		t.Fatal("no port allocated")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", s.Port()))
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	s.Stop()
	if err := <-errCh; err != nil {
		t.Errorf("Serve returned %v after Stop", err)
	}
}
