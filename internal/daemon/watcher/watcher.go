// Package watcher handles file system watching for the daemon.
package watcher

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota // settings.yaml or settings.toml
	EventTaskDataChanged                  // a file in the Taskwarrior data dir
)

func (t EventType) String() string {
	if t == EventSettingsChanged {
		return "settings"
	}
	return "task-data"
}

// DefaultDebounce is how long events are coalesced before being emitted.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a debounced file system change.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the settings files and Taskwarrior's data directory.
// Bursts of changes are coalesced per event type, since a single Taskwarrior
// command touches several data files.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	eventsChan    chan Event
	done          chan struct{}
	stopOnce      sync.Once
	delay         time.Duration
	settingsFiles map[string]bool

	mu      sync.RWMutex
	dataDir string

	debounce   map[EventType]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for the given settings files and data directory.
// A zero delay means DefaultDebounce.
func New(settingsFiles []string, dataDir string, delay time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		eventsChan:    make(chan Event, 16),
		done:          make(chan struct{}),
		delay:         delay,
		settingsFiles: make(map[string]bool),
		dataDir:       filepath.Clean(dataDir),
		debounce:      make(map[EventType]*time.Timer),
	}
	for _, f := range settingsFiles {
		w.settingsFiles[filepath.Clean(f)] = true
	}
	return w, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start adds the watches and starts processing events. Directories that do
// not exist yet are skipped with a warning.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.settingsFiles {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			log.Printf("[watcher] Warning: failed to watch settings dir %s: %v", dir, err)
		}
	}

	w.mu.RLock()
	dataDir := w.dataDir
	w.mu.RUnlock()
	if err := w.fsWatcher.Add(dataDir); err != nil {
		log.Printf("[watcher] Warning: failed to watch task data dir %s: %v", dataDir, err)
	} else {
		log.Printf("[watcher] Watching task data: %s", dataDir)
	}

	go w.processEvents()
	return nil
}

// SetDataDir moves the data directory watch, e.g. after a settings change.
func (w *Watcher) SetDataDir(dir string) error {
	dir = filepath.Clean(dir)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir == w.dataDir {
		return nil
	}
	_ = w.fsWatcher.Remove(w.dataDir)
	w.dataDir = dir
	return w.fsWatcher.Add(dir)
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for _, timer := range w.debounce {
			timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Rename covers atomic saves (write tmp, rename over target); Remove
	// covers Taskwarrior rewriting data files.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	typ, ok := w.classify(event.Name)
	if !ok {
		return
	}
	w.debounceEvent(typ, event.Name)
}

// classify maps a changed path to an event type.
func (w *Watcher) classify(path string) (EventType, bool) {
	path = filepath.Clean(path)
	if w.settingsFiles[path] {
		return EventSettingsChanged, true
	}

	w.mu.RLock()
	dataDir := w.dataDir
	w.mu.RUnlock()

	name := filepath.Base(path)
	if filepath.Dir(path) != dataDir || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".lock") {
		return 0, false
	}
	return EventTaskDataChanged, true
}

func (w *Watcher) debounceEvent(typ EventType, path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[typ]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.delay, func() {
		w.fire(typ, timer, path)
	})
	w.debounce[typ] = timer
}

// fire emits the debounced event for typ, unless timer was superseded while
// its callback waited for the lock.
func (w *Watcher) fire(typ EventType, timer *time.Timer, path string) {
	w.debounceMu.Lock()
	if w.debounce[typ] != timer {
		w.debounceMu.Unlock()
		return
	}
	delete(w.debounce, typ)
	w.debounceMu.Unlock()
	w.emit(Event{Type: typ, Path: path})
}

// emit delivers an event unless the watcher is stopped. When the consumer
// is behind, the event is dropped; a pending one already covers it.
func (w *Watcher) emit(e Event) {
	select {
	case <-w.done:
	case w.eventsChan <- e:
	default:
		log.Printf("[watcher] dropping %s event for %s, consumer busy", e.Type, e.Path)
	}
}
