package callback

import (
	"context"
	"errors"
	"fmt"

	"server/internal/artifact"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/notify"
)

// Options wires a Correlator.
type Options struct {
	Repo         domain.JobRepository
	Materializer *artifact.Materializer
	Hub          *notify.Hub
	Logger       infra.Logger
}

// Correlator applies verified webhook payloads to job records. Both outcomes
// are terminal: success resolves the record once, failure removes it. Late or
// duplicate deliveries find no pending state to act on and fall through.
type Correlator struct {
	repo         domain.JobRepository
	materializer *artifact.Materializer
	hub          *notify.Hub
	logger       infra.Logger
}

// New constructs a Correlator.
func New(opts Options) *Correlator {
	return &Correlator{
		repo:         opts.Repo,
		materializer: opts.Materializer,
		hub:          opts.Hub,
		logger:       opts.Logger,
	}
}

// ApplySuccess handles a delivery on the success callback URL. A success
// delivery without a usable artifact reference is treated as a failure: the
// job it belongs to can never resolve, so the record is removed.
func (c *Correlator) ApplySuccess(ctx context.Context, jobID, userID string, payload *Payload) error {
	if !payload.Succeeded() {
		return c.remove(ctx, jobID, userID)
	}
	inner, err := payload.InnerBody()
	if err != nil {
		return err
	}
	ref, ok := ExtractArtifact(inner)
	if !ok {
		c.logger.Warn().Str("job_id", jobID).Msg("success callback without artifact, removing job")
		return c.remove(ctx, jobID, userID)
	}

	job, err := c.repo.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		// Already removed, or never existed. Nothing to correlate.
		return nil
	}
	if err != nil {
		return fmt.Errorf("callback: load job: %w", err)
	}

	outputKey, err := c.materializer.MaterializeOutput(ctx, ref, jobID, string(job.Kind))
	if err != nil {
		return err
	}
	updated, err := c.repo.SetOutput(ctx, jobID, outputKey)
	if err != nil {
		return fmt.Errorf("callback: set output: %w", err)
	}
	if !updated {
		// A racing delivery resolved the job first. First terminal
		// callback wins; this one is a no-op.
		c.logger.Debug().Str("job_id", jobID).Msg("duplicate success callback ignored")
		return nil
	}

	c.logger.Info().
		Str("job_id", jobID).
		Str("output_key", outputKey).
		Msg("job resolved from callback")
	c.hub.Publish(userID, notify.Event{
		Name:      notify.EventImageUpdated,
		JobID:     jobID,
		OutputKey: outputKey,
	})
	return nil
}

// ApplyFailure handles a delivery on the failure callback URL.
func (c *Correlator) ApplyFailure(ctx context.Context, jobID, userID string, payload *Payload) error {
	if inner, err := payload.InnerBody(); err == nil && len(inner) > 0 {
		c.logger.Warn().
			Str("job_id", jobID).
			Int("status", payload.Status).
			Str("provider_body", truncate(string(inner), 512)).
			Msg("provider reported generation failure")
	}
	return c.remove(ctx, jobID, userID)
}

func (c *Correlator) remove(ctx context.Context, jobID, userID string) error {
	removed, err := c.repo.Delete(ctx, jobID)
	if err != nil {
		return fmt.Errorf("callback: delete job: %w", err)
	}
	if !removed {
		return nil
	}
	c.logger.Info().Str("job_id", jobID).Msg("job removed after failed generation")
	c.hub.Publish(userID, notify.Event{
		Name:  notify.EventImageDeleted,
		JobID: jobID,
	})
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
