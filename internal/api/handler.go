// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"porest/internal/activity"
	"porest/internal/database"
	custom_errors "porest/internal/errors"
	"porest/internal/github"
	"porest/internal/model"
)

// CommitFetcher pulls bucketed commit activity from the hosting API.
type CommitFetcher interface {
	FetchCommitDays(ctx context.Context, ref github.RepoRef) ([]model.CommitDay, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db      database.Querier
	fetcher CommitFetcher
	logger  *slog.Logger
	now     func() time.Time
	newRand func() activity.Rand
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, fetcher CommitFetcher, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:      db,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		newRand: func() activity.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	return h.routes()
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Use(requireUser)
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.createProject)
			r.Get("/", h.listProjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getProject)
				r.Put("/", h.updateProject)
				r.Delete("/", h.deleteProject)
				r.Post("/refresh", h.refreshCommits)
				r.Get("/activity", h.getActivity)
				r.Get("/tree", h.getTree)
			})
		})
	})

	return r
}

type ctxKey int

const userIDKey ctxKey = 0

// requireUser trusts the identity the upstream auth layer injects into
// X-User-ID. Requests without a valid user are rejected before any route
// logic runs.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Missing or invalid X-User-ID header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) uuid.UUID {
	return r.Context().Value(userIDKey).(uuid.UUID)
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// projectRequest is the create/update payload. Dates are YYYY-MM-DD strings
// and may be empty.
type projectRequest struct {
	Title      string `json:"title"`
	State      string `json:"state"`
	StartAt    string `json:"start_at"`
	EndAt      string `json:"end_at"`
	TechStack  string `json:"tech_stack"`
	Content    string `json:"content"`
	Role       string `json:"role"`
	RoleDetail string `json:"role_detail"`
	RepoURL    string `json:"repo_url"`
	ImageURL   string `json:"image_url"`
}

func parseDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// decodeProjectRequest validates the shared create/update payload rules.
func decodeProjectRequest(r *http.Request) (projectRequest, pgtype.Date, pgtype.Date, string) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, pgtype.Date{}, pgtype.Date{}, "Invalid JSON body"
	}
	if req.Title == "" {
		return req, pgtype.Date{}, pgtype.Date{}, "Title is required"
	}
	startAt, err := parseDate(req.StartAt)
	if err != nil {
		return req, pgtype.Date{}, pgtype.Date{}, "Invalid 'start_at' date. Expected YYYY-MM-DD."
	}
	endAt, err := parseDate(req.EndAt)
	if err != nil {
		return req, pgtype.Date{}, pgtype.Date{}, "Invalid 'end_at' date. Expected YYYY-MM-DD."
	}
	if req.RepoURL != "" {
		if _, err := github.ParseRepoURL(req.RepoURL); err != nil {
			return req, pgtype.Date{}, pgtype.Date{}, "Invalid repository URL"
		}
	}
	return req, startAt, endAt, ""
}

// createProject handles POST /v1/projects.
func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	req, startAt, endAt, problem := decodeProjectRequest(r)
	if problem != "" {
		respondWithError(w, http.StatusBadRequest, problem)
		return
	}

	project, err := h.db.CreateProject(r.Context(), database.CreateProjectParams{
		UserID:     userID(r),
		Title:      req.Title,
		State:      req.State,
		StartAt:    startAt,
		EndAt:      endAt,
		TechStack:  req.TechStack,
		Content:    req.Content,
		Role:       req.Role,
		RoleDetail: req.RoleDetail,
		RepoURL:    req.RepoURL,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		h.logger.Error("Failed to create project", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusCreated, project)
}

// listProjects handles GET /v1/projects?sort=latest|title|start_at|end_at.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	sort := database.ProjectSort(r.URL.Query().Get("sort"))
	if sort == "" {
		sort = database.SortLatest
	}
	if !database.ValidSort(sort) {
		respondWithError(w, http.StatusBadRequest, "Invalid 'sort' parameter. Must be one of latest, title, start_at, end_at.")
		return
	}

	projects, err := h.db.ListProjectsByUser(r.Context(), database.ListProjectsByUserParams{
		UserID: userID(r),
		Sort:   sort,
	})
	if err != nil {
		h.logger.Error("Failed to list projects", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if projects == nil {
		projects = []database.Project{}
	}

	respondWithJSON(w, http.StatusOK, projects)
}

// loadProject resolves the {id} route param into the caller's project, or
// writes the error response and returns false.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (database.Project, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return database.Project{}, false
	}

	project, err := h.db.GetProjectForUser(r.Context(), database.GetProjectForUserParams{
		ID:     id,
		UserID: userID(r),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return database.Project{}, false
		}
		h.logger.Error("Failed to get project", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return database.Project{}, false
	}
	return project, true
}

// getProject handles GET /v1/projects/{id}.
func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

// updateProject handles PUT /v1/projects/{id}.
func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	req, startAt, endAt, problem := decodeProjectRequest(r)
	if problem != "" {
		respondWithError(w, http.StatusBadRequest, problem)
		return
	}

	project, err := h.db.UpdateProject(r.Context(), database.UpdateProjectParams{
		ID:         id,
		UserID:     userID(r),
		Title:      req.Title,
		State:      req.State,
		StartAt:    startAt,
		EndAt:      endAt,
		TechStack:  req.TechStack,
		Content:    req.Content,
		Role:       req.Role,
		RoleDetail: req.RoleDetail,
		RepoURL:    req.RepoURL,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("Failed to update project", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, project)
}

// deleteProject handles DELETE /v1/projects/{id}.
func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	deleted, err := h.db.DeleteProject(r.Context(), database.DeleteProjectParams{
		ID:     id,
		UserID: userID(r),
	})
	if err != nil {
		h.logger.Error("Failed to delete project", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if deleted == 0 {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// refreshCommits handles POST /v1/projects/{id}/refresh: fetch the latest
// commits from the hosting API, bucket them by day, and persist the result
// so later views render without refetching. No retry on failure; the user
// retries manually.
func (h *Handler) refreshCommits(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if project.RepoURL == "" {
		respondWithError(w, http.StatusBadRequest, "Project has no repository URL")
		return
	}

	ref, err := github.ParseRepoURL(project.RepoURL)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid repository URL")
		return
	}

	days, err := h.fetcher.FetchCommitDays(r.Context(), ref)
	if err != nil {
		var notFound *custom_errors.ErrRepoNotFound
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return
		}
		var upstream *custom_errors.ErrUpstreamStatus
		if errors.As(err, &upstream) {
			respondWithError(w, http.StatusBadGateway, upstream.Error())
			return
		}
		h.logger.Error("Failed to fetch commits", "repo_url", project.RepoURL, "error", err)
		respondWithError(w, http.StatusBadGateway, "Failed to fetch commit data")
		return
	}

	updated, err := h.db.UpdateProjectCommitData(r.Context(), database.UpdateProjectCommitDataParams{
		ID:         project.ID,
		CommitData: days,
	})
	if err != nil {
		h.logger.Error("Failed to store commit data", "project_id", project.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

type dayCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type activityResponse struct {
	TotalCommits int         `json:"total_commits"`
	Weeks        [][]dayCell `json:"weeks"`
}

// getActivity handles GET /v1/projects/{id}/activity?start=YYYY-MM-DD,
// returning the Sunday-aligned week grid over the stored commit data.
func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var start time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		var err error
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'start' date. Expected YYYY-MM-DD.")
			return
		}
	}

	weeks := activity.BuildWeeklyGrid(project.CommitData, start, h.now())

	resp := activityResponse{Weeks: make([][]dayCell, 0, len(weeks))}
	for _, d := range project.CommitData {
		resp.TotalCommits += d.Count
	}
	for _, week := range weeks {
		cells := make([]dayCell, 0, len(week))
		for _, day := range week {
			cells = append(cells, dayCell{
				Date:  day.Date,
				Count: day.Count,
				Level: activity.IntensityLevel(day.Count),
			})
		}
		resp.Weeks = append(resp.Weeks, cells)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// getTree handles GET /v1/projects/{id}/tree?size=small|medium|large,
// deriving the seasonal tree rendering plan from the stored commit data.
func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	size := activity.Size(r.URL.Query().Get("size"))
	if size == "" {
		size = activity.SizeMedium
	}

	lastCommit := ""
	for _, d := range project.CommitData {
		if d.Count > 0 && d.Date > lastCommit {
			lastCommit = d.Date
		}
	}

	plan := activity.BuildGrowthPlan(
		project.CommitData,
		activity.InferSeason(project.State),
		size,
		lastCommit,
		h.now(),
		h.newRand(),
	)

	respondWithJSON(w, http.StatusOK, plan)
}
