// Package refresher keeps the widget snapshot up to date: it runs the export
// command, renders the result, and writes the document to disk.
package refresher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/formatter"
	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
	"github.com/watchfire-io/taskwidget/internal/source"
)

// Snapshot is the outcome of one refresh.
type Snapshot struct {
	RenderID string
	Result   render.Result
	Document []byte
	At       time.Time
}

// Refresher owns the refresh loop. Refreshes are serialized.
type Refresher struct {
	logger *log.Logger

	mu           sync.RWMutex
	settings     *models.Settings
	source       source.Source
	renderer     *render.Renderer
	snapshotPath string
	last         *Snapshot
	lastFailure  string
	subscribers  []func(Snapshot)

	refreshMu sync.Mutex
	trigger   chan struct{}
	reset     chan time.Duration

	// Overridable in tests.
	now       func() time.Time
	newID     func() string
	logWriter func(models.RenderLog, []byte) (*models.RenderLog, error)
}

// New creates a Refresher for the given settings. A nil logger means
// log.Default().
func New(s *models.Settings, logger *log.Logger) (*Refresher, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Refresher{
		logger:    logger,
		trigger:   make(chan struct{}, 1),
		reset:     make(chan time.Duration, 1),
		now:       time.Now,
		newID:     uuid.NewString,
		logWriter: config.WriteRenderLog,
	}
	if err := r.apply(s); err != nil {
		return nil, err
	}
	return r, nil
}

// apply builds the pipeline for s.
func (r *Refresher) apply(s *models.Settings) error {
	cfg, err := formatter.ConfigFromSettings(s.Display)
	if err != nil {
		return err
	}
	snapshotPath, err := config.SnapshotFile(s)
	if err != nil {
		return fmt.Errorf("failed to resolve snapshot path: %w", err)
	}
	renderer := render.NewRenderer(formatter.New(cfg), render.Options{
		Stylesheet: s.Widget.Stylesheet,
		Standalone: true,
		Refresh:    s.Widget.RefreshInterval,
	}, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	r.source = source.NewCommand(s.Source.Command, s.Source.Timeout)
	r.renderer = renderer
	r.snapshotPath = snapshotPath
	return nil
}

// Reload swaps in new settings. The next refresh uses them.
func (r *Refresher) Reload(s *models.Settings) error {
	if err := r.apply(s); err != nil {
		return err
	}
	select {
	case r.reset <- s.Widget.RefreshInterval:
	default:
	}
	r.Trigger()
	return nil
}

// SetSource replaces the payload source.
func (r *Refresher) SetSource(src source.Source) {
	r.mu.Lock()
	r.source = src
	r.mu.Unlock()
}

// Settings returns the settings in effect.
func (r *Refresher) Settings() *models.Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// SnapshotPath returns where the widget document is written.
func (r *Refresher) SnapshotPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotPath
}

// Last returns the most recent snapshot, if any.
func (r *Refresher) Last() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Snapshot{}, false
	}
	return *r.last, true
}

// OnSnapshot registers fn to be called after every refresh.
func (r *Refresher) OnSnapshot(fn func(Snapshot)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Trigger requests a refresh without waiting for it. Requests made while
// one is pending are merged.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately, then on every tick or trigger, until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	interval := r.Settings().Widget.RefreshInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-r.reset:
			if d != interval {
				interval = d
				ticker.Reset(d)
				r.logger.Printf("[refresher] refresh interval now %s", d)
			}
		case <-ticker.C:
			r.Refresh(ctx)
		case <-r.trigger:
			r.Refresh(ctx)
		}
	}
}

// Refresh runs one fetch/render/write cycle and returns its snapshot.
// Failures to fetch or parse are rendered into the document; only disk
// errors are logged without a document change.
func (r *Refresher) Refresh(ctx context.Context) Snapshot {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.mu.RLock()
	src, renderer, snapshotPath, command := r.source, r.renderer, r.snapshotPath, r.settings.Source.Command
	r.mu.RUnlock()

	snap := Snapshot{RenderID: r.newID(), At: r.now()}

	payload, err := src.Fetch(ctx)
	var failureKind string
	if err != nil {
		if errors.Is(err, context.Canceled) {
			if last, ok := r.Last(); ok {
				return last
			}
		}
		snap.Result = renderer.Failure(err)
		failureKind = models.FailureSource
	} else {
		snap.Result = renderer.Evaluate(payload, snap.At)
		if snap.Result.Kind == render.KindError {
			failureKind = models.FailureMalformed
		}
	}

	var buf bytes.Buffer
	if err := renderer.Write(&buf, snap.Result); err != nil {
		r.logger.Printf("[refresher] %v", err)
	}
	snap.Document = buf.Bytes()

	if err := r.writeSnapshot(snapshotPath, snap.Document); err != nil {
		r.logger.Printf("[refresher] %v", err)
	}

	r.recordFailure(snap, failureKind, command, payload)

	r.mu.Lock()
	r.last = &snap
	subscribers := append(([]func(Snapshot))(nil), r.subscribers...)
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
	return snap
}

// writeSnapshot writes the document and, if missing, the default stylesheet.
func (r *Refresher) writeSnapshot(path string, doc []byte) error {
	if err := config.WriteFileAtomic(path, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	css := config.StylesheetFile(path)
	if config.FileExists(css) {
		return nil
	}
	if err := config.WriteFileAtomic(css, render.DefaultStylesheet, 0o644); err != nil {
		return fmt.Errorf("failed to write stylesheet: %w", err)
	}
	return nil
}

// recordFailure writes a render log when a failure starts or changes, so a
// persistently broken export does not write one log per tick.
func (r *Refresher) recordFailure(snap Snapshot, kind, command string, payload []byte) {
	if kind == "" {
		r.mu.Lock()
		r.lastFailure = ""
		r.mu.Unlock()
		return
	}

	msg := snap.Result.Err.Error()
	r.mu.Lock()
	repeated := msg == r.lastFailure
	r.lastFailure = msg
	r.mu.Unlock()
	if repeated {
		return
	}

	entry := models.RenderLog{
		RenderID:  snap.RenderID,
		Command:   command,
		Kind:      kind,
		Error:     msg,
		CreatedAt: snap.At.UTC().Format(time.RFC3339),
	}
	if logged, err := r.logWriter(entry, payload); err != nil {
		r.logger.Printf("[refresher] failed to write render log: %v", err)
	} else {
		r.logger.Printf("[refresher] render %s failed, see log %s", snap.RenderID, logged.LogID)
	}
}
