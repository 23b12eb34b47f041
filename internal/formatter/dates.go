package formatter

import (
	"fmt"
	"math"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// Date differences are in milliseconds.
const (
	millisecondsInDay   = 24 * 60 * 60 * 1000
	millisecondsInWeek  = millisecondsInDay * 7
	millisecondsInMonth = millisecondsInDay * 30.42  // on average
	millisecondsInYear  = millisecondsInDay * 365.25 // approximately
)

// MaxDue is the Due value of tasks without a due date. Ordering never
// compares it against dated tasks.
const MaxDue int64 = 100000 * millisecondsInDay

// compactLayout is Taskwarrior's export format, e.g. 20191007T110000Z,
// which is 2019-10-07T11:00:00Z without separators.
const compactLayout = "20060102T150405Z"

// Coarsest unit first. A unit applies when the difference exceeds it.
var offsetUnits = []struct {
	unit models.Unit
	ms   float64
}{
	{models.UnitYears, millisecondsInYear},
	{models.UnitMonth, millisecondsInMonth},
	{models.UnitWeeks, millisecondsInWeek},
}

// ParseDue parses a compact Taskwarrior timestamp. The result is in UTC.
func ParseDue(s string) (time.Time, error) {
	if len(s) != len(compactLayout) {
		return time.Time{}, fmt.Errorf("invalid due date %q: want YYYYMMDDTHHMMSSZ", s)
	}
	t, err := time.Parse(compactLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return t, nil
}

// DueDiff returns the distance in milliseconds between the calendar day of due
// and the calendar day of now, both taken in now's location. The time of day
// is discarded entirely, so the result is always a whole number of days even
// across daylight saving changes.
func DueDiff(due, now time.Time) int64 {
	d := due.In(now.Location())
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// Unix seconds rather than Sub, which saturates after ~292 years.
	return (dueDay.Unix() - today.Unix()) * 1000
}

// OffsetIn expresses a day difference in the coarsest unit it exceeds,
// rounded down, so "-8 days" is -2w. Differences of a week or less stay in days.
func OffsetIn(diff int64) (int, models.Unit) {
	mag := math.Abs(float64(diff))
	for _, u := range offsetUnits {
		if mag > u.ms {
			return int(math.Floor(float64(diff) / u.ms)), u.unit
		}
	}
	return int(diff / millisecondsInDay), models.UnitDays
}

// DueOffset combines ParseDue, DueDiff and OffsetIn.
func DueOffset(due string, now time.Time) (diff int64, offset int, unit models.Unit, err error) {
	t, err := ParseDue(due)
	if err != nil {
		return 0, 0, models.UnitNone, err
	}
	diff = DueDiff(t, now)
	offset, unit = OffsetIn(diff)
	return diff, offset, unit, nil
}
