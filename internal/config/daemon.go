package config

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// LoadDaemonInfo reads ~/.taskwidget/daemon.yaml. A missing file yields nil.
func LoadDaemonInfo() (*models.DaemonInfo, error) {
	path, err := GlobalDaemonFile()
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, nil
	}

	var info models.DaemonInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveDaemonInfo publishes info as ~/.taskwidget/daemon.yaml.
func SaveDaemonInfo(info *models.DaemonInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveDaemonInfo deletes daemon.yaml if present.
func RemoveDaemonInfo() error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// IsDaemonRunning reports whether daemon.yaml names a live taskwidgetd.
// A file without a usable PID or port, or whose PID is gone, is stale and
// gets removed.
func IsDaemonRunning() (bool, *models.DaemonInfo, error) {
	info, err := LoadDaemonInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	// Signalling pid 0 targets our own process group.
	if info.PID <= 0 || info.Port <= 0 || !processAlive(info.PID) {
		_ = RemoveDaemonInfo()
		return false, info, nil
	}
	return true, info, nil
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// SnapshotAge returns how long ago the daemon last wrote its widget document.
// ok is false when the snapshot has not been written yet.
func SnapshotAge(info *models.DaemonInfo, now time.Time) (age time.Duration, ok bool) {
	if info == nil || info.Snapshot == "" {
		return 0, false
	}
	st, err := os.Stat(info.Snapshot)
	if err != nil {
		return 0, false
	}
	return now.Sub(st.ModTime()), true
}
