package models

import (
	"fmt"
	"time"
)

// DaemonInfo describes a running taskwidgetd.
// This corresponds to ~/.taskwidget/daemon.yaml.
type DaemonInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	Snapshot  string    `yaml:"snapshot"` // path of the rendered widget document
	StartedAt time.Time `yaml:"started_at"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(host string, port, pid int, snapshot string) *DaemonInfo {
	return &DaemonInfo{
		Version:   1,
		Host:      host,
		Port:      port,
		PID:       pid,
		Snapshot:  snapshot,
		StartedAt: time.Now().UTC(),
	}
}

// URL returns the address the widget document is served on.
func (d *DaemonInfo) URL() string {
	return fmt.Sprintf("http://%s:%d/", d.Host, d.Port)
}
