package formatter

import (
	"testing"
	"time"

	"github.com/watchfire-io/taskwidget/internal/models"
)

func compact(t time.Time) string {
	return t.UTC().Format(compactLayout)
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "taskwarrior export", in: "20191007T110000Z", want: time.Date(2019, 10, 7, 11, 0, 0, 0, time.UTC)},
		{name: "midnight", in: "20240229T000000Z", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "iso with separators", in: "2019-10-07T11:00:00Z", wantErr: true},
		{name: "month out of range", in: "20191307T110000Z", wantErr: true},
		{name: "day out of range", in: "20230230T000000Z", wantErr: true},
		{name: "missing zone", in: "20191007T110000", wantErr: true},
		{name: "garbage", in: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDue(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDue(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDue(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOffsetIn(t *testing.T) {
	day := int64(millisecondsInDay)
	tests := []struct {
		name       string
		days       int64
		wantOffset int
		wantUnit   models.Unit
	}{
		{"today", 0, 0, models.UnitDays},
		{"tomorrow", 1, 1, models.UnitDays},
		{"yesterday", -1, -1, models.UnitDays},
		{"exactly a week stays in days", 7, 7, models.UnitDays},
		{"eight days", 8, 1, models.UnitWeeks},
		{"eight days ago", -8, -2, models.UnitWeeks},
		{"ten days ago", -10, -2, models.UnitWeeks},
		{"forty days ago", -40, -2, models.UnitMonth},
		{"thirty days", 30, 4, models.UnitWeeks},
		{"thirty one days", 31, 1, models.UnitMonth},
		{"a year is still months", 365, 11, models.UnitMonth},
		{"a year and a day", 366, 1, models.UnitYears},
		{"long overdue", -800, -3, models.UnitYears},
		{"a week ago stays in days", -7, -7, models.UnitDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, unit := OffsetIn(tt.days * day)
			if offset != tt.wantOffset || unit != tt.wantUnit {
				t.Errorf("OffsetIn(%d days) = %d%s, want %d%s", tt.days, offset, unit, tt.wantOffset, tt.wantUnit)
			}
		})
	}
}

func TestDueOffset_DaysRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 45, 12, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for n := -6; n <= 6; n++ {
		// Any time of day on the due date lands on the same offset.
		for _, hour := range []int{0, 9, 23} {
			due := compact(today.AddDate(0, 0, n).Add(time.Duration(hour) * time.Hour))
			diff, offset, unit, err := DueOffset(due, now)
			if err != nil {
				t.Fatalf("DueOffset(%q) error: %v", due, err)
			}
			if offset != n || unit != models.UnitDays {
				t.Errorf("DueOffset(%q) = %d%s, want %dd", due, offset, unit, n)
			}
			if want := int64(n) * millisecondsInDay; diff != want {
				t.Errorf("DueOffset(%q) diff = %d, want %d", due, diff, want)
			}
		}
	}
}

func TestDueDiff_UsesLocalCalendarDay(t *testing.T) {
	// 23:00 UTC on the 9th is 09:00 on the 10th in UTC+10.
	loc := time.FixedZone("AEST", 10*60*60)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)
	due := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	if got := DueDiff(due, now); got != 0 {
		t.Errorf("DueDiff = %d, want 0 (same local day)", got)
	}

	// Just before local midnight of the next day is still one day away.
	due = time.Date(2026, 3, 11, 13, 59, 0, 0, time.UTC)
	if got := DueDiff(due, now); got != millisecondsInDay {
		t.Errorf("DueDiff = %d, want %d", got, int64(millisecondsInDay))
	}
}

func TestDueDiff_AcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	// DST starts 2026-03-08 in New York; that day has 23 hours.
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	due := time.Date(2026, 3, 9, 12, 0, 0, 0, loc)

	if got := DueDiff(due, now); got != 2*millisecondsInDay {
		t.Errorf("DueDiff = %d, want exactly two days", got)
	}
}
