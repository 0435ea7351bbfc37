// internal/database/database.go
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same queries run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New binds the query set to a connection pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries executes the project table's statements.
type Queries struct {
	db DBTX
}

// Querier is the query surface handlers and the refresher depend on; tests
// substitute a mock.
type Querier interface {
	CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error)
	GetProjectForUser(ctx context.Context, arg GetProjectForUserParams) (Project, error)
	ListProjectsByUser(ctx context.Context, arg ListProjectsByUserParams) ([]Project, error)
	ListProjectsWithRepo(ctx context.Context) ([]Project, error)
	UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error)
	UpdateProjectCommitData(ctx context.Context, arg UpdateProjectCommitDataParams) (Project, error)
	DeleteProject(ctx context.Context, arg DeleteProjectParams) (int64, error)
}

var _ Querier = (*Queries)(nil)

// GetProjectForUserParams scopes a lookup to the owning user.
type GetProjectForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// DeleteProjectParams scopes a delete to the owning user.
type DeleteProjectParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}
