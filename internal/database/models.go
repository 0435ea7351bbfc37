// internal/database/models.go
package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"porest/internal/model"
)

// Project is one row of the projects table. Commit activity is denormalized
// into a JSONB column so the grid and tree can be rendered without calling
// the hosting API on every view.
type Project struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	Title      string            `json:"title"`
	State      string            `json:"state"`
	StartAt    pgtype.Date       `json:"start_at"`
	EndAt      pgtype.Date       `json:"end_at"`
	TechStack  string            `json:"tech_stack"`
	Content    string            `json:"content"`
	Role       string            `json:"role"`
	RoleDetail string            `json:"role_detail"`
	RepoURL    string            `json:"repo_url"`
	ImageURL   string            `json:"image_url"`
	CommitData []model.CommitDay `json:"commit_data"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
