// internal/database/projects.go
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"porest/internal/model"
)

const projectColumns = `id, user_id, title, state, start_at, end_at, tech_stack, content, role, role_detail, repo_url, image_url, commit_data, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.State,
		&p.StartAt,
		&p.EndAt,
		&p.TechStack,
		&p.Content,
		&p.Role,
		&p.RoleDetail,
		&p.RepoURL,
		&p.ImageURL,
		&p.CommitData,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectProjects(rows pgx.Rows) ([]Project, error) {
	defer rows.Close()
	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const createProject = `
INSERT INTO projects (user_id, title, state, start_at, end_at, tech_stack, content, role, role_detail, repo_url, image_url, commit_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + projectColumns

type CreateProjectParams struct {
	UserID     uuid.UUID
	Title      string
	State      string
	StartAt    pgtype.Date
	EndAt      pgtype.Date
	TechStack  string
	Content    string
	Role       string
	RoleDetail string
	RepoURL    string
	ImageURL   string
	CommitData []model.CommitDay
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject,
		arg.UserID,
		arg.Title,
		arg.State,
		arg.StartAt,
		arg.EndAt,
		arg.TechStack,
		arg.Content,
		arg.Role,
		arg.RoleDetail,
		arg.RepoURL,
		arg.ImageURL,
		arg.CommitData,
	)
	return scanProject(row)
}

const getProjectForUser = `
SELECT ` + projectColumns + `
FROM projects
WHERE id = $1 AND user_id = $2`

func (q *Queries) GetProjectForUser(ctx context.Context, arg GetProjectForUserParams) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectForUser, arg.ID, arg.UserID)
	return scanProject(row)
}

// ProjectSort names the list orderings offered by the catalog view.
type ProjectSort string

const (
	SortLatest  ProjectSort = "latest"
	SortTitle   ProjectSort = "title"
	SortStartAt ProjectSort = "start_at"
	SortEndAt   ProjectSort = "end_at"
)

// orderClauses is a fixed lookup; sort keys never reach the SQL text from
// user input directly.
var orderClauses = map[ProjectSort]string{
	SortLatest:  "updated_at DESC",
	SortTitle:   "title ASC",
	SortStartAt: "start_at ASC",
	SortEndAt:   "end_at ASC",
}

// ValidSort reports whether s names a supported ordering.
func ValidSort(s ProjectSort) bool {
	_, ok := orderClauses[s]
	return ok
}

const listProjectsByUser = `
SELECT ` + projectColumns + `
FROM projects
WHERE user_id = $1
ORDER BY `

type ListProjectsByUserParams struct {
	UserID uuid.UUID
	Sort   ProjectSort
}

func (q *Queries) ListProjectsByUser(ctx context.Context, arg ListProjectsByUserParams) ([]Project, error) {
	clause, ok := orderClauses[arg.Sort]
	if !ok {
		clause = orderClauses[SortLatest]
	}
	rows, err := q.db.Query(ctx, listProjectsByUser+clause, arg.UserID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

const listProjectsWithRepo = `
SELECT ` + projectColumns + `
FROM projects
WHERE repo_url <> ''
ORDER BY created_at ASC`

// ListProjectsWithRepo returns every project that has a repository URL,
// across all users. Used by the background refresher.
func (q *Queries) ListProjectsWithRepo(ctx context.Context) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsWithRepo)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

const updateProject = `
UPDATE projects
SET title = $3,
    state = $4,
    start_at = $5,
    end_at = $6,
    tech_stack = $7,
    content = $8,
    role = $9,
    role_detail = $10,
    repo_url = $11,
    image_url = $12,
    updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + projectColumns

type UpdateProjectParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Title      string
	State      string
	StartAt    pgtype.Date
	EndAt      pgtype.Date
	TechStack  string
	Content    string
	Role       string
	RoleDetail string
	RepoURL    string
	ImageURL   string
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, updateProject,
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.State,
		arg.StartAt,
		arg.EndAt,
		arg.TechStack,
		arg.Content,
		arg.Role,
		arg.RoleDetail,
		arg.RepoURL,
		arg.ImageURL,
	)
	return scanProject(row)
}

const updateProjectCommitData = `
UPDATE projects
SET commit_data = $2
WHERE id = $1
RETURNING ` + projectColumns

type UpdateProjectCommitDataParams struct {
	ID         uuid.UUID
	CommitData []model.CommitDay
}

// UpdateProjectCommitData replaces the denormalized activity column. It
// deliberately leaves updated_at alone so background refreshes do not
// reshuffle the "latest" sort order.
func (q *Queries) UpdateProjectCommitData(ctx context.Context, arg UpdateProjectCommitDataParams) (Project, error) {
	row := q.db.QueryRow(ctx, updateProjectCommitData, arg.ID, arg.CommitData)
	return scanProject(row)
}

const deleteProject = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2`

// DeleteProject removes a project and reports how many rows went away, so
// callers can distinguish "deleted" from "was never yours".
func (q *Queries) DeleteProject(ctx context.Context, arg DeleteProjectParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProject, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
