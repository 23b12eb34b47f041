package formatter

import (
	"testing"

	"github.com/watchfire-io/taskwidget/internal/models"
)

func TestOrderersDoNotModifyInput(t *testing.T) {
	in := []models.DisplayTask{
		{ID: "a", HasDue: true, Due: 5 * millisecondsInDay, Urgency: 1},
		{ID: "b", HasDue: true, Due: -millisecondsInDay, Urgency: 2},
		{ID: "c", Due: MaxDue, Urgency: 3},
	}

	for _, o := range []Orderer{DueThenUrgency{}, UrgencyOnly{}} {
		out := o.Order(in)
		if len(out) != len(in) {
			t.Fatalf("%T returned %d tasks, want %d", o, len(out), len(in))
		}
		if in[0].ID != "a" || in[1].ID != "b" || in[2].ID != "c" {
			t.Errorf("%T reordered its input", o)
		}
	}
}

func TestDueThenUrgency_UndatedIgnoresDueField(t *testing.T) {
	// HasDue false wins even if Due was left at zero.
	in := []models.DisplayTask{
		{ID: "undated", Urgency: 50},
		{ID: "dated", HasDue: true, Due: 30 * millisecondsInDay},
	}
	out := DueThenUrgency{}.Order(in)
	if out[0].ID != "dated" {
		t.Errorf("order = [%s %s], want dated first", out[0].ID, out[1].ID)
	}
}

func TestOrdererFor(t *testing.T) {
	tests := []struct {
		name    string
		want    Orderer
		wantErr bool
	}{
		{"", DueThenUrgency{}, false},
		{"due", DueThenUrgency{}, false},
		{"urgency", UrgencyOnly{}, false},
		{"random", nil, true},
	}
	for _, tt := range tests {
		got, err := OrdererFor(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("OrdererFor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("OrdererFor(%q) = %T, want %T", tt.name, got, tt.want)
		}
	}
}

func TestAlpha(t *testing.T) {
	tests := []struct {
		rank, max int
		want      float64
	}{
		{0, 20, 1},
		{1, 20, 0.95},
		{10, 20, 0.5},
		{19, 20, 0.05},
		{1, 3, 0.67},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := Alpha(tt.rank, tt.max); got != tt.want {
			t.Errorf("Alpha(%d, %d) = %v, want %v", tt.rank, tt.max, got, tt.want)
		}
	}
}

func TestBucketColor(t *testing.T) {
	p := models.DefaultPalette()
	tests := []struct {
		task models.DisplayTask
		want models.RGB
	}{
		{models.DisplayTask{HasDue: true, Due: -millisecondsInDay}, p.Urgent},
		{models.DisplayTask{HasDue: true, Due: 0}, p.Warning},
		{models.DisplayTask{HasDue: true, Due: millisecondsInDay}, p.Neutral},
		{models.DisplayTask{Due: MaxDue}, p.Neutral},
	}
	for _, tt := range tests {
		b := BucketOf(tt.task)
		if got := BucketColor(p, b); got != tt.want {
			t.Errorf("BucketColor(%v) = %v, want %v", b, got, tt.want)
		}
	}
}
