package domain

import "context"

// JobRepository defines persistence for generation jobs. The store is the
// source of truth for whether a job has already reached a terminal state, so
// the conditional operations report whether they actually changed a row.
type JobRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	GetByID(ctx context.Context, jobID string) (*GenerationJob, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]GenerationJob, error)

	// SetOutput writes the output key if and only if the job exists and has
	// no output yet. It returns false when the write did not land, which
	// callers treat as a duplicate terminal callback.
	SetOutput(ctx context.Context, jobID, outputKey string) (bool, error)

	// Delete removes the job and reports whether a row was actually deleted.
	Delete(ctx context.Context, jobID string) (bool, error)

	SetBookmarked(ctx context.Context, jobID string, bookmarked bool) error
	IncrementLikes(ctx context.Context, jobID string) (int, error)
}
