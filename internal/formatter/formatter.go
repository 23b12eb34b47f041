// Package formatter turns a Taskwarrior export into an ordered, colorized
// task list. It is pure: every call starts from the raw payload and shares no
// state with other calls.
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// Config is the immutable formatting configuration.
type Config struct {
	MaxEntries     int
	StartIndicator string
	Palette        models.Palette
	Orderer        Orderer
	ValidateSchema bool
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	cfg, _ := ConfigFromSettings(models.NewSettings().Display)
	return cfg
}

// ConfigFromSettings builds a Config from the display settings.
func ConfigFromSettings(d models.DisplayConfig) (Config, error) {
	orderer, err := OrdererFor(d.Ordering)
	if err != nil {
		return Config{}, err
	}
	if d.MaxEntries <= 0 {
		return Config{}, fmt.Errorf("max_entries must be positive, got %d", d.MaxEntries)
	}
	return Config{
		MaxEntries:     d.MaxEntries,
		StartIndicator: d.StartIndicator,
		Palette:        d.Palette,
		Orderer:        orderer,
		ValidateSchema: d.ValidateSchema,
	}, nil
}

// List is the result of one formatting pass.
type List struct {
	Tasks []models.DisplayTask // at most MaxEntries, annotated
	Total int                  // tasks in the payload before truncation
}

// Formatter formats task payloads according to a Config.
type Formatter struct {
	cfg Config
}

// New creates a Formatter. A nil Orderer defaults to DueThenUrgency.
func New(cfg Config) *Formatter {
	if cfg.Orderer == nil {
		cfg.Orderer = DueThenUrgency{}
	}
	return &Formatter{cfg: cfg}
}

// Config returns the formatter's configuration.
func (f *Formatter) Config() Config {
	return f.cfg
}

// Format formats a payload relative to the current time.
func (f *Formatter) Format(payload []byte) (List, error) {
	return f.FormatAt(payload, time.Now())
}

// FormatAt is Format with an explicit "now".
//
// It returns ErrEmptyInput when the payload is blank or null, and a
// *PayloadError when it cannot be interpreted. An empty array is not an error.
func (f *Formatter) FormatAt(payload []byte, now time.Time) (List, error) {
	raw, err := f.decode(payload)
	if err != nil {
		return List{}, err
	}

	tasks := make([]models.DisplayTask, 0, len(raw))
	for i, r := range raw {
		t, err := f.normalize(i, r, now)
		if err != nil {
			return List{}, err
		}
		tasks = append(tasks, t)
	}

	ordered := f.cfg.Orderer.Order(tasks)
	if len(ordered) > f.cfg.MaxEntries {
		ordered = ordered[:f.cfg.MaxEntries]
	}

	return List{
		Tasks: Annotate(ordered, f.cfg.Palette, f.cfg.MaxEntries),
		Total: len(raw),
	}, nil
}

func (f *Formatter) decode(payload []byte) ([]models.RawTask, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, ErrEmptyInput
	}

	if f.cfg.ValidateSchema {
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			return nil, payloadErr(err)
		}
		if err := validateExport(doc); err != nil {
			return nil, err
		}
	}

	var raw []models.RawTask
	if err := json.Unmarshal(payload, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, payloadErr(fmt.Errorf("expected an array of tasks, got %s", typeErr.Value))
		}
		return nil, payloadErr(err)
	}
	return raw, nil
}

// normalize derives a DisplayTask from a RawTask. The RawTask is not modified.
func (f *Formatter) normalize(index int, r models.RawTask, now time.Time) (models.DisplayTask, error) {
	t := models.DisplayTask{
		ID:          r.ID.String(),
		Description: r.Description.String(),
		Project:     r.Project.String(),
		Due:         MaxDue,
		Started:     r.IsStarted(),
	}

	if r.HasDue() {
		diff, offset, unit, err := DueOffset(r.Due.String(), now)
		if err != nil {
			return models.DisplayTask{}, taskErr(index, "due", err)
		}
		t.HasDue = true
		t.Due = diff
		t.Offset = offset
		t.Unit = unit
	}

	if len(r.Tags) > 0 {
		tags := make([]string, len(r.Tags))
		for i, tag := range r.Tags {
			tags[i] = "+" + tag
		}
		t.Tags = strings.Join(tags, " ")
	}

	if t.Started {
		t.StartMarker = f.cfg.StartIndicator
	}

	if r.Urgency != "" {
		u, err := strconv.ParseFloat(strings.TrimSpace(r.Urgency.String()), 64)
		if err != nil || math.IsNaN(u) || math.IsInf(u, 0) {
			return models.DisplayTask{}, taskErr(index, "urgency", fmt.Errorf("not a number: %q", r.Urgency))
		}
		t.Urgency = u
	}

	return t, nil
}
