// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "porest/internal/errors"
	"porest/internal/model"
)

// setupTestClient creates a httptest server and a github client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := NewClient("", logger)
	require.NoError(t, client.SetBaseURL(server.URL))

	return client, server
}

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    RepoRef
		wantErr bool
	}{
		{"plain https URL", "https://github.com/octocat/hello-world", RepoRef{"octocat", "hello-world"}, false},
		{"strips .git suffix", "https://github.com/octocat/hello-world.git", RepoRef{"octocat", "hello-world"}, false},
		{"trailing path segments ignored", "https://github.com/octocat/hello-world/tree/main", RepoRef{"octocat", "hello-world"}, false},
		{"not a github URL", "https://gitlab.com/octocat/hello-world", RepoRef{}, true},
		{"missing repo segment", "https://github.com/octocat", RepoRef{}, true},
		{"empty string", "", RepoRef{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseRepoURL(tc.url)
			if tc.wantErr {
				var invalid *custom_errors.ErrInvalidRepoURL
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref)
		})
	}
}

func TestClient_FetchCommitDays(t *testing.T) {
	t.Run("buckets fetched commits by day", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test/repo/commits", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[
				{"sha": "a", "commit": {"author": {"name": "t", "email": "t@t.com", "date": "2025-10-20T10:00:00Z"}}},
				{"sha": "b", "commit": {"author": {"name": "t", "email": "t@t.com", "date": "2025-10-20T15:00:00Z"}}},
				{"sha": "c", "commit": {"author": {"name": "t", "email": "t@t.com", "date": "2025-10-21T09:00:00Z"}}}
			]`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		days, err := client.FetchCommitDays(context.Background(), RepoRef{Owner: "test", Name: "repo"})

		require.NoError(t, err)
		assert.Equal(t, []model.CommitDay{
			{Date: "2025-10-20", Count: 2},
			{Date: "2025-10-21", Count: 1},
		}, days)
	})

	t.Run("empty repository yields no days", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[]`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		days, err := client.FetchCommitDays(context.Background(), RepoRef{Owner: "test", Name: "repo"})

		require.NoError(t, err)
		assert.Empty(t, days)
	})

	t.Run("maps 404 to ErrRepoNotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.FetchCommitDays(context.Background(), RepoRef{Owner: "test", Name: "gone"})

		var notFound *custom_errors.ErrRepoNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "gone", notFound.Name)
	})

	t.Run("maps other statuses to ErrUpstreamStatus", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintln(w, `{"message": "bad gateway"}`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.FetchCommitDays(context.Background(), RepoRef{Owner: "test", Name: "repo"})

		var upstream *custom_errors.ErrUpstreamStatus
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	})

	t.Run("raises on a commit without an author date", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[{"sha": "a", "commit": {"author": {"name": "t", "email": "t@t.com"}}}]`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.FetchCommitDays(context.Background(), RepoRef{Owner: "test", Name: "repo"})

		var malformed *custom_errors.ErrMalformedCommitRecord
		require.ErrorAs(t, err, &malformed)
	})
}
