// Package daemon wires the refresher, HTTP server, and file watcher into the
// taskwidgetd process.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/daemon/refresher"
	"github.com/watchfire-io/taskwidget/internal/daemon/server"
	"github.com/watchfire-io/taskwidget/internal/daemon/watcher"
	"github.com/watchfire-io/taskwidget/internal/models"
)

// Daemon is a running taskwidgetd.
type Daemon struct {
	refresher *refresher.Refresher
	server    *server.Server
	watcher   *watcher.Watcher
	info      *models.DaemonInfo

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New builds the daemon components for s. Port 0 means a dynamic port.
func New(s *models.Settings, port int) (*Daemon, error) {
	r, err := refresher.New(s, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresher: %w", err)
	}

	srv, err := server.New(port, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	settingsFiles, err := settingsFiles()
	if err != nil {
		srv.Stop()
		return nil, err
	}
	dataDir, err := config.TaskDataDir(s)
	if err != nil {
		srv.Stop()
		return nil, err
	}
	w, err := watcher.New(settingsFiles, dataDir, 0)
	if err != nil {
		srv.Stop()
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Daemon{
		refresher: r,
		server:    srv,
		watcher:   w,
		info:      models.NewDaemonInfo("127.0.0.1", srv.Port(), os.Getpid(), r.SnapshotPath()),
	}, nil
}

func settingsFiles() ([]string, error) {
	yamlPath, err := config.GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	tomlPath, err := config.GlobalSettingsTOMLFile()
	if err != nil {
		return nil, err
	}
	return []string{yamlPath, tomlPath}, nil
}

// Refresher returns the daemon's refresher.
func (d *Daemon) Refresher() *refresher.Refresher {
	return d.refresher
}

// Info returns the daemon info written to daemon.yaml.
func (d *Daemon) Info() *models.DaemonInfo {
	return d.info
}

// Start launches the background goroutines and publishes daemon.yaml.
// errCh receives a server failure, if any.
func (d *Daemon) Start(errCh chan<- error) error {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	if err := config.SaveDaemonInfo(d.info); err != nil {
		cancel()
		return fmt.Errorf("failed to write daemon info: %w", err)
	}

	d.wg.Add(3)
	go func() {
		defer d.wg.Done()
		if err := d.server.Serve(); err != nil && errCh != nil {
			errCh <- err
		}
	}()
	go func() {
		defer d.wg.Done()
		_ = d.refresher.Run(ctx)
	}()
	if err := d.watcher.Start(); err != nil {
		log.Printf("Warning: failed to start watcher: %v", err)
	}
	go func() {
		defer d.wg.Done()
		d.handleEvents(ctx)
	}()

	log.Printf("Daemon started on %s (PID %d), snapshot %s", d.info.URL(), d.info.PID, d.info.Snapshot)
	return nil
}

// Stop shuts everything down and removes daemon.yaml.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.watcher.Stop()
		d.server.Stop()
		d.wg.Wait()

		if err := config.RemoveDaemonInfo(); err != nil {
			log.Printf("Failed to remove daemon info: %v", err)
		}
	})
}

func (d *Daemon) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.watcher.Events():
			switch e.Type {
			case watcher.EventTaskDataChanged:
				d.refresher.Trigger()
			case watcher.EventSettingsChanged:
				d.reloadSettings()
			}
		}
	}
}

func (d *Daemon) reloadSettings() {
	s, err := config.LoadSettings()
	if err != nil {
		log.Printf("[daemon] keeping previous settings: %v", err)
		return
	}
	if err := d.refresher.Reload(s); err != nil {
		log.Printf("[daemon] keeping previous settings: %v", err)
		return
	}
	if dataDir, err := config.TaskDataDir(s); err == nil {
		if err := d.watcher.SetDataDir(dataDir); err != nil {
			log.Printf("[daemon] failed to watch %s: %v", dataDir, err)
		}
	}
	if path := d.refresher.SnapshotPath(); path != d.info.Snapshot {
		d.info.Snapshot = path
		if err := config.SaveDaemonInfo(d.info); err != nil {
			log.Printf("[daemon] failed to update daemon info: %v", err)
		}
	}
	log.Printf("[daemon] settings reloaded")
}

// URL returns the address the widget is served on.
func (d *Daemon) URL() string {
	return d.info.URL()
}

// Refresh requests an immediate refresh.
func (d *Daemon) Refresh() {
	d.refresher.Trigger()
}

// RequestShutdown asks the process to shut down gracefully.
func (d *Daemon) RequestShutdown() {
	server.RequestShutdown()
}
