package formatter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// Orderer decides the display order of normalized tasks. Implementations must
// be stable and must not modify their input.
type Orderer interface {
	Order(tasks []models.DisplayTask) []models.DisplayTask
}

// DueThenUrgency sorts ascending by due date, with urgency as a fractional
// tie-breaker. Urgency is subtracted as urgency/1000 ms, so it only separates
// tasks due on the same day as long as urgency stays below 1000.
// Undated tasks sort after every dated task, however far out its due date.
type DueThenUrgency struct{}

func (DueThenUrgency) Order(tasks []models.DisplayTask) []models.DisplayTask {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, compareDue)
	return out
}

func compareDue(a, b models.DisplayTask) int {
	if a.HasDue != b.HasDue {
		if a.HasDue {
			return -1
		}
		return 1
	}
	return cmp.Compare(dueKey(a), dueKey(b))
}

func dueKey(t models.DisplayTask) float64 {
	due := t.Due
	if !t.HasDue {
		due = MaxDue
	}
	return float64(due) - t.Urgency/1000
}

// UrgencyOnly sorts by descending urgency and ignores due dates.
type UrgencyOnly struct{}

func (UrgencyOnly) Order(tasks []models.DisplayTask) []models.DisplayTask {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b models.DisplayTask) int {
		return cmp.Compare(b.Urgency, a.Urgency)
	})
	return out
}

// OrdererFor returns the strategy for a settings value.
func OrdererFor(name string) (Orderer, error) {
	switch name {
	case "", models.OrderingDue:
		return DueThenUrgency{}, nil
	case models.OrderingUrgency:
		return UrgencyOnly{}, nil
	default:
		return nil, fmt.Errorf("unknown ordering %q (want %q or %q)", name, models.OrderingDue, models.OrderingUrgency)
	}
}
