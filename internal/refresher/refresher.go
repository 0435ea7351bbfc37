// internal/refresher/refresher.go
package refresher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"porest/internal/database"
	"porest/internal/github"
	"porest/internal/model"
)

// CommitFetcher pulls bucketed commit activity from the hosting API.
type CommitFetcher interface {
	FetchCommitDays(ctx context.Context, ref github.RepoRef) ([]model.CommitDay, error)
}

// Refresher keeps the denormalized commit activity of every linked project
// from going stale, so the forest view stays current without each project
// being opened and refreshed by hand.
type Refresher struct {
	dbpool      *pgxpool.Pool
	fetcher     CommitFetcher
	logger      *slog.Logger
	interval    time.Duration
	concurrency int
}

// New creates a new Refresher instance.
func New(dbpool *pgxpool.Pool, fetcher CommitFetcher, logger *slog.Logger, interval time.Duration, concurrency int) *Refresher {
	return &Refresher{
		dbpool:      dbpool,
		fetcher:     fetcher,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start begins the continuous refresh process.
func (rf *Refresher) Start(ctx context.Context) {
	rf.logger.Info("Starting refresher", "interval", rf.interval.String(), "concurrency", rf.concurrency)
	ticker := time.NewTicker(rf.interval)
	defer ticker.Stop()

	rf.runCycle(ctx) // Initial pass

	for {
		select {
		case <-ticker.C:
			rf.runCycle(ctx)
		case <-ctx.Done():
			rf.logger.Info("Refresher shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runCycle refreshes every project that has a repository URL, a bounded
// number at a time. One project failing never fails the cycle.
func (rf *Refresher) runCycle(ctx context.Context) {
	rf.logger.Info("Starting new refresh cycle")

	projects, err := database.New(rf.dbpool).ListProjectsWithRepo(ctx)
	if err != nil {
		rf.logger.Error("Failed to list projects for refresh", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rf.concurrency)

	for _, project := range projects {
		project := project
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := rf.refreshInTransaction(gctx, project)
			if err != nil && !errors.Is(err, context.Canceled) {
				rf.logger.Error("Failed to refresh project", "project_id", project.ID, "repo_url", project.RepoURL, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		rf.logger.Error("Refresh cycle finished with an error", "error", err)
	} else {
		rf.logger.Info("Refresh cycle finished", "projects", len(projects))
	}
}

// refreshInTransaction wraps a single project's refresh in a DB transaction.
func (rf *Refresher) refreshInTransaction(ctx context.Context, project database.Project) error {
	tx, err := rf.dbpool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if err := rf.refreshProject(ctx, database.New(tx), project); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// refreshProject fetches and stores fresh commit activity for one project.
func (rf *Refresher) refreshProject(ctx context.Context, q database.Querier, project database.Project) error {
	logger := rf.logger.With("project_id", project.ID, "repo_url", project.RepoURL)

	ref, err := github.ParseRepoURL(project.RepoURL)
	if err != nil {
		return err
	}

	days, err := rf.fetcher.FetchCommitDays(ctx, ref)
	if err != nil {
		return err
	}

	_, err = q.UpdateProjectCommitData(ctx, database.UpdateProjectCommitDataParams{
		ID:         project.ID,
		CommitData: days,
	})
	if err != nil {
		return err
	}

	logger.Info("Refreshed commit activity", "days", len(days))
	return nil
}
