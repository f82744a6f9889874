package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"server/internal/dispatch"
	"server/internal/domain"
	"server/internal/routing"
)

// Derived actions spawn a fresh job from a recorded one. The source record is
// never mutated; every action gets its own id and runs through the same
// dispatch path as a direct submission.

func (a *App) GenerationsUpscale(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	source, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	reference, err := a.sourceReference(source)
	if err != nil {
		a.domainError(w, err)
		return
	}
	job, err := a.Dispatcher.Dispatch(r.Context(), dispatch.SubmitRequest{
		UserID:         userID,
		Kind:           domain.GenerationKindImage,
		Prompt:         source.Prompt,
		Model:          routing.ModelUpscale,
		Creativity:     source.Creativity,
		Steps:          source.Steps,
		Seed:           dispatch.SeedRandom,
		AspectRatio:    source.AspectRatio,
		ReferenceImage: reference,
		Metadata:       map[string]any{"source_job_id": source.ID, "action": "upscale"},
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.respondAction(w, job)
}

func (a *App) GenerationsRemix(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	source, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	var req struct {
		Prompt     string `json:"prompt,omitempty"`
		Creativity int    `json:"creativity,omitempty"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	prompt := source.Prompt
	if strings.TrimSpace(req.Prompt) != "" {
		prompt = req.Prompt
	}
	creativity := source.Creativity
	if req.Creativity > 0 {
		creativity = req.Creativity
	}
	reference, err := a.sourceReference(source)
	if err != nil {
		a.domainError(w, err)
		return
	}
	// A remix always rolls a fresh seed; reusing the source seed would just
	// reproduce the source image.
	job, err := a.Dispatcher.Dispatch(r.Context(), dispatch.SubmitRequest{
		UserID:         userID,
		Kind:           source.Kind,
		Prompt:         prompt,
		Model:          source.Model,
		Creativity:     creativity,
		Steps:          source.Steps,
		Seed:           dispatch.SeedRandom,
		AspectRatio:    source.AspectRatio,
		ReferenceImage: reference,
		Duration:       source.Duration,
		Metadata:       map[string]any{"source_job_id": source.ID, "action": "remix"},
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.respondAction(w, job)
}

func (a *App) GenerationsFill(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	source, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	var req struct {
		Prompt    string `json:"prompt"`
		MaskImage string `json:"mask_image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.MaskImage) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "fill requires a prompt and a mask image")
		return
	}
	reference, err := a.sourceReference(source)
	if err != nil {
		a.domainError(w, err)
		return
	}
	job, err := a.Dispatcher.Dispatch(r.Context(), dispatch.SubmitRequest{
		UserID:         userID,
		Kind:           domain.GenerationKindImage,
		Prompt:         req.Prompt,
		Model:          routing.ModelFill,
		Creativity:     source.Creativity,
		Steps:          source.Steps,
		Seed:           dispatch.SeedRandom,
		AspectRatio:    source.AspectRatio,
		ReferenceImage: reference,
		MaskImage:      req.MaskImage,
		Metadata:       map[string]any{"source_job_id": source.ID, "action": "fill"},
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.respondAction(w, job)
}

func (a *App) GenerationsBookmark(w http.ResponseWriter, r *http.Request) {
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
	var req struct {
		Bookmarked *bool `json:"bookmarked"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	bookmarked := !job.Bookmarked
	if req.Bookmarked != nil {
		bookmarked = *req.Bookmarked
	}
	if err := a.Repo.SetBookmarked(r.Context(), job.ID, bookmarked); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": job.ID, "bookmarked": bookmarked})
}

func (a *App) GenerationsLike(w http.ResponseWriter, r *http.Request) {
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
	likes, err := a.Repo.IncrementLikes(r.Context(), job.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": job.ID, "likes": likes})
}

func (a *App) respondAction(w http.ResponseWriter, job *domain.GenerationJob) {
	code := http.StatusAccepted
	if job.Resolved() {
		code = http.StatusOK
	}
	a.json(w, code, a.toResponse(job))
}

// sourceReference turns a recorded output into something a provider can
// fetch. Locally stored outputs get their public URL; object-store keys have
// no public address and cannot seed a derived action.
func (a *App) sourceReference(source *domain.GenerationJob) (string, error) {
	if !source.Resolved() {
		return "", fmt.Errorf("%w: source generation is still pending", domain.ErrInvalidRequest)
	}
	if strings.HasPrefix(source.OutputKey, "generated/") {
		return a.Materializer.PublicURL(source.OutputKey), nil
	}
	if strings.HasPrefix(source.OutputKey, "http://") || strings.HasPrefix(source.OutputKey, "https://") {
		return source.OutputKey, nil
	}
	return "", fmt.Errorf("%w: source output %q is not addressable", domain.ErrInvalidRequest, source.OutputKey)
}
