// Package models contains shared data structures used across the application.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scalar holds the textual form of a JSON scalar. Taskwarrior exports some
// fields as strings in one version and as numbers in another, so the value is
// kept verbatim and interpreted by whoever consumes it.
type Scalar string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", kindOf(data[0]))
	}
	*s = Scalar(data)
	return nil
}

func kindOf(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// String returns the raw text.
func (s Scalar) String() string {
	return string(s)
}

// RawTask is a single element of the `task export` JSON array.
// Only the fields the widget consumes are decoded.
type RawTask struct {
	ID          Scalar   `json:"id"`
	Description Scalar   `json:"description"`
	Project     Scalar   `json:"project"`
	Due         Scalar   `json:"due"`     // compact form, e.g. 20191007T110000Z
	Tags        []string `json:"tags"`
	Start       Scalar   `json:"start"`   // presence marks a started task
	Urgency     Scalar   `json:"urgency"` // numeric string or number
}

// HasDue reports whether the task carries a due date.
func (t RawTask) HasDue() bool {
	return t.Due != ""
}

// IsStarted reports whether the task has been started.
func (t RawTask) IsStarted() bool {
	return t.Start != ""
}

// Unit is the display unit of a due-date offset.
type Unit string

const (
	UnitNone  Unit = ""
	UnitDays  Unit = "d"
	UnitWeeks Unit = "w"
	UnitMonth Unit = "m"
	UnitYears Unit = "y"
)

// DueBucket classifies a due date relative to today.
type DueBucket int

const (
	BucketFuture DueBucket = iota // due later, or no due date
	BucketToday
	BucketOverdue
)

// String returns the bucket name used in class attributes and logs.
func (b DueBucket) String() string {
	switch b {
	case BucketOverdue:
		return "overdue"
	case BucketToday:
		return "today"
	default:
		return "future"
	}
}

// DisplayTask is a task ready for presentation. It is derived from a RawTask
// on every render and never written back.
type DisplayTask struct {
	ID          string
	Description string
	Project     string

	HasDue bool
	Due    int64 // milliseconds between due day and today; MaxDue without a due date
	Offset int   // Due expressed in Unit
	Unit   Unit

	Started     bool
	StartMarker string // indicator glyph for started tasks, empty otherwise
	Tags        string // "+home +errand"
	Urgency     float64

	Bucket DueBucket
	Rank   int
	Color  Color
}

// DueLabel renders the offset with its unit, e.g. "-2d" or "3w".
// Tasks without a due date have an empty label.
func (t DisplayTask) DueLabel() string {
	if !t.HasDue {
		return ""
	}
	return fmt.Sprintf("%d%s", t.Offset, t.Unit)
}

// UrgencyLabel renders urgency with two decimals.
func (t DisplayTask) UrgencyLabel() string {
	return fmt.Sprintf("%.2f", t.Urgency)
}
