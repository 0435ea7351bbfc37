// internal/model/models.go
package model

// CommitDay is one calendar day's aggregated commit count, as produced by
// bucketing the raw commit list from the hosting API. The date is the
// YYYY-MM-DD portion of the commit timestamp, taken as given (no timezone
// normalization).
type CommitDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RawCommit is a single commit as returned by the hosting API, reduced to
// the one field the bucketing step needs.
type RawCommit struct {
	Timestamp string
}
