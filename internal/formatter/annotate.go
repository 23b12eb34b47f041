package formatter

import (
	"math"
	"slices"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// Alpha is the fade applied to the row at rank: 1 for the first row, falling
// by 1/maxEntries per row. Rounded to two decimals.
func Alpha(rank, maxEntries int) float64 {
	if maxEntries <= 0 {
		return 1
	}
	a := 1 - float64(rank)/float64(maxEntries)
	return math.Round(a*100) / 100
}

// BucketOf classifies a task by its due date. Undated tasks count as future.
func BucketOf(t models.DisplayTask) models.DueBucket {
	switch {
	case !t.HasDue:
		return models.BucketFuture
	case t.Due < 0:
		return models.BucketOverdue
	case t.Due == 0:
		return models.BucketToday
	default:
		return models.BucketFuture
	}
}

// BucketColor maps a bucket to its palette entry:
// overdue is Urgent (red), today is Warning (amber), the rest Neutral.
func BucketColor(p models.Palette, b models.DueBucket) models.RGB {
	switch b {
	case models.BucketOverdue:
		return p.Urgent
	case models.BucketToday:
		return p.Warning
	default:
		return p.Neutral
	}
}

// Annotate assigns rank, bucket and color to an ordered, truncated list.
func Annotate(tasks []models.DisplayTask, p models.Palette, maxEntries int) []models.DisplayTask {
	out := slices.Clone(tasks)
	for i := range out {
		out[i].Rank = i
		out[i].Bucket = BucketOf(out[i])
		out[i].Color = BucketColor(p, out[i].Bucket).WithAlpha(Alpha(i, maxEntries))
	}
	return out
}

// TagColor returns the tag color at the row's alpha.
func TagColor(p models.Palette, row models.Color) models.Color {
	return p.Tags.WithAlpha(row.Alpha)
}
