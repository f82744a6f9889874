package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// GenerationRepositoryPG implements domain.JobRepository on PostgreSQL.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a new generation repository backed by PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Create inserts a new generation record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	metadata, err := json.Marshal(nonNilMetadata(job.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	query := `
INSERT INTO generations (id, user_id, kind, prompt, model, creativity, steps, seed, aspect_ratio, reference_key, mask_key, duration, output_key, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.UserID,
		job.Kind,
		job.Prompt,
		job.Model,
		job.Creativity,
		job.Steps,
		job.Seed,
		job.AspectRatio,
		job.ReferenceKey,
		job.MaskKey,
		job.Duration,
		job.OutputKey,
		metadata,
	)
	return err
}

// GetByID fetches a generation by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	query := selectColumns + ` WHERE id = $1;`
	row := r.pool.QueryRow(ctx, query, jobID)
	job, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByUser returns the user's generations, newest first.
func (r *GenerationRepositoryPG) ListByUser(ctx context.Context, userID string, limit int) ([]domain.GenerationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := selectColumns + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.GenerationJob
	for rows.Next() {
		job, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// SetOutput writes the output key exactly once. The WHERE clause is the
// write-once guard: a second terminal callback finds output_key already set
// and affects zero rows.
func (r *GenerationRepositoryPG) SetOutput(ctx context.Context, jobID, outputKey string) (bool, error) {
	query := `
UPDATE generations
SET output_key = $2
WHERE id = $1 AND output_key = '';
`
	tag, err := r.pool.Exec(ctx, query, jobID, outputKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a generation record.
func (r *GenerationRepositoryPG) Delete(ctx context.Context, jobID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1;`, jobID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetBookmarked flips the bookmark flag.
func (r *GenerationRepositoryPG) SetBookmarked(ctx context.Context, jobID string, bookmarked bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE generations SET bookmarked = $2 WHERE id = $1;`, jobID, bookmarked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementLikes bumps the like counter and returns the new value.
func (r *GenerationRepositoryPG) IncrementLikes(ctx context.Context, jobID string) (int, error) {
	row := r.pool.QueryRow(ctx, `UPDATE generations SET likes = likes + 1 WHERE id = $1 RETURNING likes;`, jobID)
	var likes int
	if err := row.Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

const selectColumns = `
SELECT id, user_id, kind, prompt, model, creativity, steps, seed, aspect_ratio, reference_key, mask_key, duration, output_key, metadata, bookmarked, likes, created_at
FROM generations`

func scanGeneration(row pgx.Row) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var metadata []byte
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Kind,
		&job.Prompt,
		&job.Model,
		&job.Creativity,
		&job.Steps,
		&job.Seed,
		&job.AspectRatio,
		&job.ReferenceKey,
		&job.MaskKey,
		&job.Duration,
		&job.OutputKey,
		&metadata,
		&job.Bookmarked,
		&job.Likes,
		&job.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &job, nil
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

var _ domain.JobRepository = (*GenerationRepositoryPG)(nil)
