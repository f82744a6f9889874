package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/dispatch"
	"server/internal/domain"
)

const defaultListLimit = 50

type generationRequest struct {
	Kind           string         `json:"kind"`
	Prompt         string         `json:"prompt"`
	Model          string         `json:"model"`
	Creativity     int            `json:"creativity"`
	Steps          int            `json:"steps"`
	Seed           string         `json:"seed"`
	AspectRatio    string         `json:"aspect_ratio"`
	ReferenceImage string         `json:"reference_image,omitempty"`
	MaskImage      string         `json:"mask_image,omitempty"`
	Duration       int            `json:"duration,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type generationResponse struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Status      string         `json:"status"`
	Prompt      string         `json:"prompt"`
	Model       string         `json:"model"`
	Creativity  int            `json:"creativity"`
	Steps       int            `json:"steps"`
	Seed        int            `json:"seed"`
	AspectRatio string         `json:"aspect_ratio,omitempty"`
	Duration    int            `json:"duration,omitempty"`
	OutputKey   string         `json:"output_key,omitempty"`
	OutputURL   string         `json:"output_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Bookmarked  bool           `json:"bookmarked"`
	Likes       int            `json:"likes"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (a *App) toResponse(job *domain.GenerationJob) generationResponse {
	resp := generationResponse{
		ID:          job.ID,
		Kind:        string(job.Kind),
		Status:      "pending",
		Prompt:      job.Prompt,
		Model:       job.Model,
		Creativity:  job.Creativity,
		Steps:       job.Steps,
		Seed:        job.Seed,
		AspectRatio: job.AspectRatio,
		Duration:    job.Duration,
		OutputKey:   job.OutputKey,
		Metadata:    job.Metadata,
		Bookmarked:  job.Bookmarked,
		Likes:       job.Likes,
		CreatedAt:   job.CreatedAt,
	}
	if job.Resolved() {
		resp.Status = "resolved"
		if strings.HasPrefix(job.OutputKey, "generated/") {
			resp.OutputURL = a.Materializer.PublicURL(job.OutputKey)
		}
	}
	return resp
}

// GenerationsSubmit accepts a new generation request. Synchronous providers
// answer with a resolved job in the same call; asynchronous providers answer
// 202 with a pending job that later resolves over the notification channel.
func (a *App) GenerationsSubmit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind := domain.GenerationKind(req.Kind)
	if req.Kind == "" {
		kind = domain.GenerationKindImage
	}
	job, err := a.Dispatcher.Dispatch(r.Context(), dispatch.SubmitRequest{
		UserID:         userID,
		Kind:           kind,
		Prompt:         req.Prompt,
		Model:          req.Model,
		Creativity:     req.Creativity,
		Steps:          req.Steps,
		Seed:           req.Seed,
		AspectRatio:    req.AspectRatio,
		ReferenceImage: req.ReferenceImage,
		MaskImage:      req.MaskImage,
		Duration:       req.Duration,
		Metadata:       req.Metadata,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	code := http.StatusAccepted
	if job.Resolved() {
		code = http.StatusOK
	}
	a.json(w, code, a.toResponse(job))
}

func (a *App) GenerationsGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.toResponse(job))
}

func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	jobs, err := a.Repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]generationResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, a.toResponse(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"generations": out})
}

func (a *App) GenerationsDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if _, err := a.Repo.Delete(r.Context(), job.ID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted", "id": job.ID})
}

// ownedJob loads the path's job and enforces ownership.
func (a *App) ownedJob(r *http.Request, userID string) (*domain.GenerationJob, error) {
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Repo.GetByID(r.Context(), jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return job, nil
}
