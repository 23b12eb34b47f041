package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKDATA", "")
	return home
}

func TestLoadSettings_Defaults(t *testing.T) {
	setHome(t)

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if s.Display.MaxEntries != 20 || s.Display.Ordering != models.OrderingDue {
		t.Errorf("defaults = %+v", s.Display)
	}
	if s.Source.Command != models.DefaultCommand {
		t.Errorf("Command = %q", s.Source.Command)
	}
}

func TestLoadSettings_PartialYAMLKeepsDefaults(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, GlobalDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "display:\n  max_entries: 5\nwidget:\n  refresh_interval: 30s\n"
	if err := os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if s.Display.MaxEntries != 5 {
		t.Errorf("MaxEntries = %d, want 5", s.Display.MaxEntries)
	}
	if s.Widget.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %s, want 30s", s.Widget.RefreshInterval)
	}
	if s.Display.Ordering != models.OrderingDue || s.Source.Timeout != 5*time.Second {
		t.Errorf("defaults lost: %+v", s)
	}
}

func TestLoadSettings_TOML(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, GlobalDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
[source]
command = "task +work export"

[display]
ordering = "urgency"

[display.palette.urgent]
r = 200
g = 0
b = 0
`
	if err := os.WriteFile(filepath.Join(dir, SettingsTOMLFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if s.Source.Command != "task +work export" {
		t.Errorf("Command = %q", s.Source.Command)
	}
	if s.Display.Ordering != models.OrderingUrgency {
		t.Errorf("Ordering = %q", s.Display.Ordering)
	}
	if s.Display.Palette.Urgent != (models.RGB{R: 200}) {
		t.Errorf("Urgent = %+v", s.Display.Palette.Urgent)
	}
	if s.Display.MaxEntries != 20 {
		t.Errorf("MaxEntries = %d, want default 20", s.Display.MaxEntries)
	}

	if err := SaveSettings(s); err == nil {
		t.Error("SaveSettings should refuse to overwrite a TOML settings file")
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, GlobalDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("display:\n  ordering: random\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(); err == nil || !strings.Contains(err.Error(), "unknown ordering") {
		t.Errorf("LoadSettings error = %v, want unknown ordering", err)
	}
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	setHome(t)

	s := models.NewSettings()
	s.Display.MaxEntries = 7
	s.Display.Palette.Tags = models.RGB{R: 1, G: 2, B: 3}
	if err := SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings error: %v", err)
	}

	got, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if *got != *s {
		t.Errorf("loaded %+v, want %+v", got, s)
	}
}

func TestSetSetting(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(*models.Settings) bool
		wantErr    bool
	}{
		{"display.max_entries", "8", func(s *models.Settings) bool { return s.Display.MaxEntries == 8 }, false},
		{"display.max_entries", "0", nil, true},
		{"display.max_entries", "many", nil, true},
		{"display.ordering", "urgency", func(s *models.Settings) bool { return s.Display.Ordering == models.OrderingUrgency }, false},
		{"display.ordering", "alphabetical", nil, true},
		{"display.validate_schema", "false", func(s *models.Settings) bool { return !s.Display.ValidateSchema }, false},
		{"display.palette.urgent", "#ff0000", func(s *models.Settings) bool { return s.Display.Palette.Urgent == models.RGB{R: 255} }, false},
		{"display.palette.tags", "1,2,3", func(s *models.Settings) bool { return s.Display.Palette.Tags == models.RGB{R: 1, G: 2, B: 3} }, false},
		{"display.palette.tags", "green", nil, true},
		{"source.timeout", "2s", func(s *models.Settings) bool { return s.Source.Timeout == 2*time.Second }, false},
		{"widget.refresh_interval", "10ms", nil, true},
		{"widget.port", "8080", func(s *models.Settings) bool { return s.Widget.Port == 8080 }, false},
		{"widget.port", "70000", nil, true},
		{"nope", "1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := models.NewSettings()
			before := *s
			err := SetSetting(s, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if *s != before {
					t.Error("settings changed despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetSetting error: %v", err)
			}
			if !tt.check(s) {
				t.Errorf("setting not applied: %+v", s)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	home := setHome(t)
	s := models.NewSettings()

	snap, err := SnapshotFile(s)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, GlobalDirName, SnapshotFileName); snap != want {
		t.Errorf("SnapshotFile = %s, want %s", snap, want)
	}
	if got, want := StylesheetFile(snap), filepath.Join(home, GlobalDirName, StylesheetFileName); got != want {
		t.Errorf("StylesheetFile = %s, want %s", got, want)
	}

	s.Widget.Output = "~/Desktop/tasks.html"
	snap, _ = SnapshotFile(s)
	if want := filepath.Join(home, "Desktop", "tasks.html"); snap != want {
		t.Errorf("SnapshotFile(~) = %s, want %s", snap, want)
	}

	dataDir, _ := TaskDataDir(s)
	if want := filepath.Join(home, TaskDataDirName); dataDir != want {
		t.Errorf("TaskDataDir = %s, want %s", dataDir, want)
	}
	t.Setenv("TASKDATA", "/srv/tasks")
	if dataDir, _ = TaskDataDir(s); dataDir != "/srv/tasks" {
		t.Errorf("TaskDataDir with TASKDATA = %s", dataDir)
	}
	s.Source.DataDir = "/data/task"
	if dataDir, _ = TaskDataDir(s); dataDir != "/data/task" {
		t.Errorf("TaskDataDir configured = %s", dataDir)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "widget.html")
	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic error: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "two" {
		t.Errorf("content = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %d entries", len(entries))
	}
}

func TestDaemonInfo(t *testing.T) {
	setHome(t)

	running, info, err := IsDaemonRunning()
	if err != nil || running || info != nil {
		t.Fatalf("no daemon: running=%v info=%v err=%v", running, info, err)
	}

	if err := SaveDaemonInfo(models.NewDaemonInfo("127.0.0.1", 4321, os.Getpid(), "/tmp/widget.html")); err != nil {
		t.Fatalf("SaveDaemonInfo error: %v", err)
	}
	running, info, err = IsDaemonRunning()
	if err != nil || !running {
		t.Fatalf("own pid: running=%v err=%v", running, err)
	}
	if info.URL() != "http://127.0.0.1:4321/" {
		t.Errorf("URL = %s", info.URL())
	}

	if err := RemoveDaemonInfo(); err != nil {
		t.Fatalf("RemoveDaemonInfo error: %v", err)
	}
	if info, _ := LoadDaemonInfo(); info != nil {
		t.Error("daemon info still present after removal")
	}
	if err := RemoveDaemonInfo(); err != nil {
		t.Errorf("removing a missing daemon.yaml: %v", err)
	}
}

func TestIsDaemonRunning_StaleInfo(t *testing.T) {
	tests := []struct {
		name string
		info *models.DaemonInfo
	}{
		{"zero pid", models.NewDaemonInfo("127.0.0.1", 4321, 0, "")},
		{"negative pid", models.NewDaemonInfo("127.0.0.1", 4321, -1, "")},
		{"no port", models.NewDaemonInfo("127.0.0.1", 0, os.Getpid(), "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setHome(t)
			if err := SaveDaemonInfo(tt.info); err != nil {
				t.Fatalf("SaveDaemonInfo error: %v", err)
			}
			running, _, err := IsDaemonRunning()
			if err != nil || running {
				t.Fatalf("running=%v err=%v, want stale", running, err)
			}
			if info, _ := LoadDaemonInfo(); info != nil {
				t.Error("stale daemon.yaml not removed")
			}
		})
	}
}

func TestSnapshotAge(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "widget.html")
	info := models.NewDaemonInfo("127.0.0.1", 4321, os.Getpid(), snapshot)

	if _, ok := SnapshotAge(info, time.Now()); ok {
		t.Error("missing snapshot reported an age")
	}
	if err := os.WriteFile(snapshot, []byte("<div></div>"), 0o644); err != nil {
		t.Fatal(err)
	}
	written := time.Now().Add(-90 * time.Second).Truncate(time.Second)
	if err := os.Chtimes(snapshot, written, written); err != nil {
		t.Fatal(err)
	}
	age, ok := SnapshotAge(info, written.Add(time.Minute))
	if !ok || age != time.Minute {
		t.Errorf("SnapshotAge = %v, %v, want 1m0s", age, ok)
	}
}

func TestRenderLogs(t *testing.T) {
	setHome(t)

	if logs, err := ListRenderLogs(); err != nil || len(logs) != 0 {
		t.Fatalf("ListRenderLogs on empty dir = %v, %v", logs, err)
	}

	first, err := WriteRenderLog(models.RenderLog{
		LogID:     "a",
		RenderID:  "11111111-2222",
		Command:   "task export",
		Kind:      "malformed_payload",
		Error:     "malformed payload: unexpected end of JSON input",
		CreatedAt: "2026-03-10T10:00:00Z",
	}, []byte(`[{"id":`))
	if err != nil {
		t.Fatalf("WriteRenderLog error: %v", err)
	}
	if _, err := WriteRenderLog(models.RenderLog{LogID: "b", Kind: "source", Error: "exit status 1", CreatedAt: "2026-03-10T11:00:00Z"}, nil); err != nil {
		t.Fatalf("WriteRenderLog error: %v", err)
	}

	logs, err := ListRenderLogs()
	if err != nil {
		t.Fatalf("ListRenderLogs error: %v", err)
	}
	if len(logs) != 2 || logs[0].LogID != "b" || logs[1].LogID != "a" {
		t.Fatalf("logs = %+v, want b then a", logs)
	}

	entry, body, err := ReadRenderLog(first.LogID)
	if err != nil {
		t.Fatalf("ReadRenderLog error: %v", err)
	}
	if entry.Error != first.Error || entry.Command != "task export" {
		t.Errorf("entry = %+v", entry)
	}
	if string(body) != `[{"id":` {
		t.Errorf("body = %q", body)
	}

	if _, _, err := ReadRenderLog("../settings"); err == nil {
		t.Error("ReadRenderLog should reject path separators")
	}
}

func TestPruneRenderLogs(t *testing.T) {
	setHome(t)

	for _, id := range []string{"1", "2", "3", "4"} {
		entry := models.RenderLog{LogID: id, CreatedAt: "2026-03-10T10:00:0" + id + "Z"}
		if _, err := WriteRenderLog(entry, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := PruneRenderLogs(2); err != nil {
		t.Fatalf("PruneRenderLogs error: %v", err)
	}
	logs, _ := ListRenderLogs()
	if len(logs) != 2 || logs[0].LogID != "4" || logs[1].LogID != "3" {
		t.Errorf("kept %+v, want 4 and 3", logs)
	}
}
