// internal/errors/errors.go
package errors

import "fmt"

// ErrInvalidRepoURL is returned when a repository URL does not contain an
// 'owner/name' path under a recognized host.
type ErrInvalidRepoURL struct {
	URL string
}

func (e *ErrInvalidRepoURL) Error() string {
	return fmt.Sprintf("invalid repository URL: %q, expected '.../<owner>/<repo>'", e.URL)
}

// ErrMalformedCommitRecord is returned when a raw commit record carries a
// missing or unparseable timestamp. Records are never silently skipped:
// dropping them would hide data-integrity bugs upstream.
type ErrMalformedCommitRecord struct {
	Index     int
	Timestamp string
}

func (e *ErrMalformedCommitRecord) Error() string {
	return fmt.Sprintf("malformed commit record at index %d: timestamp %q", e.Index, e.Timestamp)
}

// ErrRepoNotFound is returned when the hosting API reports 404 for a
// repository.
type ErrRepoNotFound struct {
	Owner string
	Name  string
}

func (e *ErrRepoNotFound) Error() string {
	return fmt.Sprintf("repository not found: %s/%s", e.Owner, e.Name)
}

// ErrUpstreamStatus is returned for any non-404 error status from the
// hosting API. The status code is carried so callers can surface it.
type ErrUpstreamStatus struct {
	StatusCode int
}

func (e *ErrUpstreamStatus) Error() string {
	return fmt.Sprintf("commit source API error: status %d", e.StatusCode)
}
