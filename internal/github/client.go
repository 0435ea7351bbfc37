// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"porest/internal/activity"
	custom_errors "porest/internal/errors"
	"porest/internal/model"
)

// commitPageSize is the number of most-recent commits fetched per refresh.
// One page only: the contribution grid is a recency sketch, not an archive.
const commitPageSize = 100

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

// ParseRepoURL extracts the owner/name pair from a repository URL, dropping
// a trailing .git. Anything that does not match the '.../<owner>/<repo>'
// pattern is rejected.
func ParseRepoURL(raw string) (RepoRef, error) {
	m := repoURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return RepoRef{}, &custom_errors.ErrInvalidRepoURL{URL: raw}
	}
	return RepoRef{
		Owner: m[1],
		Name:  strings.TrimSuffix(m[2], ".git"),
	}, nil
}

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance. An empty token
// yields an unauthenticated client, which is enough for public
// repositories.
func NewClient(token string, logger *slog.Logger) *Client {
	var tc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// SetBaseURL points the client at a different API root. Tests use it to
// stand in for the hosting API.
func (c *Client) SetBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSuffix(raw, "/") + "/")
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

// FetchCommitDays fetches the repository's most recent commits and buckets
// them by calendar day. A 404 maps to ErrRepoNotFound, any other API status
// to ErrUpstreamStatus; nothing is retried.
func (c *Client) FetchCommitDays(ctx context.Context, ref RepoRef) ([]model.CommitDay, error) {
	c.logger.Debug("Fetching commits", "owner", ref.Owner, "repo", ref.Name)

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: commitPageSize},
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			if ghErr.Response.StatusCode == http.StatusNotFound {
				return nil, &custom_errors.ErrRepoNotFound{Owner: ref.Owner, Name: ref.Name}
			}
			return nil, &custom_errors.ErrUpstreamStatus{StatusCode: ghErr.Response.StatusCode}
		}
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) && rateErr.Response != nil {
			return nil, &custom_errors.ErrUpstreamStatus{StatusCode: rateErr.Response.StatusCode}
		}
		return nil, fmt.Errorf("fetching commits for %s/%s: %w", ref.Owner, ref.Name, err)
	}

	counts, err := activity.IndexCommitDates(toRawCommits(commits))
	if err != nil {
		return nil, err
	}
	return activity.DayCounts(counts), nil
}

// toRawCommits projects the API response onto the indexer's input shape. A
// commit without an author date gets an empty timestamp, which the indexer
// rejects.
func toRawCommits(commits []*github.RepositoryCommit) []model.RawCommit {
	raw := make([]model.RawCommit, len(commits))
	for i, c := range commits {
		date := c.GetCommit().GetAuthor().GetDate()
		if !date.IsZero() {
			raw[i] = model.RawCommit{Timestamp: date.Format(time.RFC3339)}
		}
	}
	return raw
}
