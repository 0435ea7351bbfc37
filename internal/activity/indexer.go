// internal/activity/indexer.go
package activity

import (
	"sort"
	"strings"
	"time"

	custom_errors "porest/internal/errors"
	"porest/internal/model"
)

// IndexCommitDates buckets raw commits by calendar day. The key is the
// portion of the timestamp preceding the 'T' separator, taken as given
// without timezone normalization, so bucketing matches whatever offset the
// hosting API reported.
//
// A record with a missing or unparseable timestamp raises
// ErrMalformedCommitRecord rather than being skipped.
func IndexCommitDates(commits []model.RawCommit) (map[string]int, error) {
	counts := make(map[string]int, len(commits))
	for i, c := range commits {
		date, ok := datePortion(c.Timestamp)
		if !ok {
			return nil, &custom_errors.ErrMalformedCommitRecord{Index: i, Timestamp: c.Timestamp}
		}
		counts[date]++
	}
	return counts, nil
}

// DayCounts flattens a date->count map into records sorted by date
// ascending. The map itself carries no order; sorting keeps persisted
// output deterministic.
func DayCounts(counts map[string]int) []model.CommitDay {
	days := make([]model.CommitDay, 0, len(counts))
	for date, count := range counts {
		days = append(days, model.CommitDay{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// datePortion projects an ISO 8601 timestamp onto its date part. A
// date-only input passes through unchanged.
func datePortion(ts string) (string, bool) {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		ts = ts[:i]
	}
	if _, err := time.Parse("2006-01-02", ts); err != nil {
		return "", false
	}
	return ts, true
}
