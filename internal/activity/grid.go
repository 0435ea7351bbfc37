// internal/activity/grid.go
package activity

import (
	"time"

	"porest/internal/model"
)

// Week is an ordered run of up to seven day entries, Sunday first. Only the
// trailing week of a grid may be shorter than seven.
type Week []model.CommitDay

// defaultLookback is 52 weeks, matching the contribution graph's span.
const defaultLookback = 364

// BuildWeeklyGrid partitions the range [start, now] into Sunday-aligned
// weeks with a commit count for every day, zero where no commits were
// recorded. The start is rolled back to the preceding Sunday (or kept if
// already Sunday) and defaults to 52 weeks before now when zero. The
// reference time is a parameter so callers control "now"; the builder never
// reads the wall clock.
//
// An empty commits input yields an empty grid without computing any date
// range.
func BuildWeeklyGrid(commits []model.CommitDay, start, now time.Time) []Week {
	if len(commits) == 0 {
		return nil
	}

	end := dateOf(now)
	if start.IsZero() {
		start = now.AddDate(0, 0, -defaultLookback)
	}
	s := dateOf(start)
	s = s.AddDate(0, 0, -int(s.Weekday()))

	lookup := make(map[string]int, len(commits))
	for _, c := range commits {
		lookup[c.Date] = c.Count
	}

	var weeks []Week
	week := make(Week, 0, 7)
	for d := s; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		week = append(week, model.CommitDay{Date: key, Count: lookup[key]})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make(Week, 0, 7)
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// IntensityLevel maps a day's commit count onto the heatmap's five shades.
func IntensityLevel(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 10:
		return 3
	default:
		return 4
	}
}

// dateOf truncates a moment to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
