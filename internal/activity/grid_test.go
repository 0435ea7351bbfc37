// internal/activity/grid_test.go
package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"porest/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func flatten(weeks []Week) []model.CommitDay {
	var days []model.CommitDay
	for _, w := range weeks {
		days = append(days, w...)
	}
	return days
}

func TestBuildWeeklyGrid(t *testing.T) {
	t.Run("empty commits short-circuit to an empty grid", func(t *testing.T) {
		weeks := BuildWeeklyGrid(nil, date("2025-10-19"), date("2025-10-25"))
		assert.Empty(t, weeks)
	})

	t.Run("fills zero-count days from a Sunday start", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-20", Count: 3}}

		// 2025-10-19 is a Sunday.
		weeks := BuildWeeklyGrid(commits, date("2025-10-19"), date("2025-10-25"))

		require.Len(t, weeks, 1)
		require.Len(t, weeks[0], 7)
		assert.Equal(t, model.CommitDay{Date: "2025-10-19", Count: 0}, weeks[0][0])
		assert.Equal(t, model.CommitDay{Date: "2025-10-20", Count: 3}, weeks[0][1])
	})

	t.Run("rolls a mid-week start back to the preceding Sunday", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-22", Count: 1}}

		// 2025-10-22 is a Wednesday; the grid must open on Sunday the 19th.
		weeks := BuildWeeklyGrid(commits, date("2025-10-22"), date("2025-10-25"))

		require.NotEmpty(t, weeks)
		assert.Equal(t, "2025-10-19", weeks[0][0].Date)
		assert.Equal(t, time.Sunday, date(weeks[0][0].Date).Weekday())
	})

	t.Run("all weeks are full except possibly the last", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-20", Count: 2}}

		// Sunday start, Wednesday end: one full week plus a 4-day tail.
		weeks := BuildWeeklyGrid(commits, date("2025-10-19"), date("2025-10-29"))

		require.Len(t, weeks, 2)
		assert.Len(t, weeks[0], 7)
		assert.Len(t, weeks[1], 4)
	})

	t.Run("concatenated days are gapless and strictly ascending", func(t *testing.T) {
		commits := []model.CommitDay{
			{Date: "2025-08-01", Count: 1},
			{Date: "2025-09-15", Count: 5},
		}
		now := date("2025-10-25")

		weeks := BuildWeeklyGrid(commits, date("2025-07-10"), now)
		days := flatten(weeks)

		require.NotEmpty(t, days)
		assert.Equal(t, time.Sunday, date(days[0].Date).Weekday())
		assert.Equal(t, "2025-10-25", days[len(days)-1].Date)
		for i := 1; i < len(days); i++ {
			prev := date(days[i-1].Date)
			assert.Equal(t, prev.AddDate(0, 0, 1), date(days[i].Date))
		}
	})

	t.Run("day total equals the inclusive range length", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-20", Count: 1}}
		start := date("2025-10-19") // already Sunday, no roll-back
		now := date("2025-11-10")

		weeks := BuildWeeklyGrid(commits, start, now)

		wantDays := int(now.Sub(start).Hours()/24) + 1
		assert.Len(t, flatten(weeks), wantDays)
	})

	t.Run("default start spans 52 weeks back from now", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-20", Count: 1}}
		now := date("2025-10-25")

		weeks := BuildWeeklyGrid(commits, time.Time{}, now)
		days := flatten(weeks)

		// 364 days back is 2024-10-26 (a Saturday), rolled back to Sunday
		// 2024-10-20.
		assert.Equal(t, "2024-10-20", days[0].Date)
		assert.Equal(t, "2025-10-25", days[len(days)-1].Date)
	})

	t.Run("identical inputs with a frozen now are idempotent", func(t *testing.T) {
		commits := []model.CommitDay{
			{Date: "2025-10-20", Count: 3},
			{Date: "2025-10-24", Count: 1},
		}
		now := date("2025-10-25")

		first := BuildWeeklyGrid(commits, date("2025-10-01"), now)
		second := BuildWeeklyGrid(commits, date("2025-10-01"), now)

		assert.Equal(t, first, second)
	})

	t.Run("a now before the adjusted start yields an empty grid", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-20", Count: 1}}

		weeks := BuildWeeklyGrid(commits, date("2025-10-19"), date("2025-10-12"))

		assert.Empty(t, weeks)
	})

	t.Run("start equal to now yields a single-day grid", func(t *testing.T) {
		commits := []model.CommitDay{{Date: "2025-10-19", Count: 2}}

		weeks := BuildWeeklyGrid(commits, date("2025-10-19"), date("2025-10-19"))

		require.Len(t, weeks, 1)
		assert.Equal(t, Week{{Date: "2025-10-19", Count: 2}}, weeks[0])
	})
}

func TestIntensityLevel(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{5, 2},
		{6, 3},
		{10, 3},
		{11, 4},
		{100, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IntensityLevel(tc.count), "count %d", tc.count)
	}
}
