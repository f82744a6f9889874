// Package dispatch routes a normalized generation request to its provider and
// decides between the synchronous path (call, wait, persist a resolved job)
// and the asynchronous path (hand the call to the durable delivery layer and
// persist a pending job once the submission is accepted).
package dispatch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/artifact"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers"
	"server/internal/queue"
	"server/internal/routing"
)

// SeedRandom is the sentinel seed value resolved to a concrete integer at
// job-creation time. The concrete value is what gets persisted and sent
// downstream; the sentinel never reaches a provider.
const SeedRandom = "random"

// SubmitRequest is a normalized generation submission.
type SubmitRequest struct {
	UserID         string
	Kind           domain.GenerationKind
	Prompt         string
	Model          string
	Creativity     int
	Steps          int
	Seed           string
	AspectRatio    string
	ReferenceImage string
	MaskImage      string
	Duration       int
	Metadata       map[string]any
}

// Options wires a Dispatcher.
type Options struct {
	Router        *routing.Router
	Adapters      providers.Registry
	Publisher     queue.Publisher
	Repo          domain.JobRepository
	Materializer  *artifact.Materializer
	HTTPClient    *http.Client
	PublicBaseURL string
	Logger        infra.Logger
}

// Dispatcher owns the submission path for generation jobs.
type Dispatcher struct {
	router        *routing.Router
	adapters      providers.Registry
	publisher     queue.Publisher
	repo          domain.JobRepository
	materializer  *artifact.Materializer
	httpClient    *http.Client
	publicBaseURL string
	logger        infra.Logger
}

// New constructs a Dispatcher.
func New(opts Options) *Dispatcher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Synchronous providers block for the full generation round trip.
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Dispatcher{
		router:        opts.Router,
		adapters:      opts.Adapters,
		publisher:     opts.Publisher,
		repo:          opts.Repo,
		materializer:  opts.Materializer,
		httpClient:    httpClient,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		logger:        opts.Logger,
	}
}

// Dispatch routes, builds, and submits the request. The returned job is
// resolved (output set) when the provider is synchronous and pending
// otherwise. Any routing, normalization, materialization, or submission
// failure is returned synchronously and leaves no job record behind.
func (d *Dispatcher) Dispatch(ctx context.Context, req SubmitRequest) (*domain.GenerationJob, error) {
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.ReferenceImage) == "" {
		return nil, fmt.Errorf("%w: prompt or reference image is required", domain.ErrInvalidRequest)
	}
	if req.Kind != domain.GenerationKindImage && req.Kind != domain.GenerationKindVideo {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidRequest, req.Kind)
	}

	seed, err := ResolveSeed(req.Seed)
	if err != nil {
		return nil, err
	}

	// The job id exists before any provider call and is the correlation
	// handle for everything that follows.
	jobID := uuid.NewString()

	task := domain.DeriveTaskType(req.Kind, strings.TrimSpace(req.ReferenceImage) != "")
	decision, err := d.router.Route(req.Model, task)
	if err != nil {
		return nil, err
	}
	adapter, ok := d.adapters.Lookup(decision.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: provider %q has no adapter", domain.ErrNoRoute, decision.Provider)
	}

	referenceURL, err := d.materializer.MaterializeInput(ctx, req.ReferenceImage, jobID, "reference")
	if err != nil {
		return nil, err
	}
	maskURL, err := d.materializer.MaterializeInput(ctx, req.MaskImage, jobID, "mask")
	if err != nil {
		return nil, err
	}

	env, err := adapter.Build(providers.BuildRequest{
		JobID:        jobID,
		UserID:       req.UserID,
		ModelID:      decision.ProviderModelID,
		Task:         task,
		Prompt:       strings.TrimSpace(req.Prompt),
		Steps:        req.Steps,
		Seed:         seed,
		Creativity:   req.Creativity,
		AspectRatio:  req.AspectRatio,
		ReferenceURL: referenceURL,
		MaskURL:      maskURL,
		Duration:     req.Duration,
	})
	if err != nil {
		return nil, err
	}

	job := &domain.GenerationJob{
		ID:           jobID,
		UserID:       req.UserID,
		Kind:         req.Kind,
		Prompt:       strings.TrimSpace(req.Prompt),
		Model:        req.Model,
		Creativity:   req.Creativity,
		Steps:        providers.ClampSteps(decision.ProviderModelID, req.Steps),
		Seed:         seed,
		AspectRatio:  req.AspectRatio,
		ReferenceKey: referenceURL,
		MaskKey:      maskURL,
		Duration:     req.Duration,
		Metadata:     mergeMetadata(req.Metadata, decision),
		CreatedAt:    time.Now().UTC(),
	}

	if sync, ok := adapter.(providers.SyncAdapter); ok && !adapter.Async() {
		return d.dispatchSync(ctx, job, sync, env)
	}
	return d.dispatchAsync(ctx, job, env)
}

// dispatchSync performs the provider call directly and blocks for the full
// round trip; the job record is only created once the output is in hand, so
// no pending state is ever observable.
func (d *Dispatcher) dispatchSync(ctx context.Context, job *domain.GenerationJob, adapter providers.SyncAdapter, env *providers.Envelope) (*domain.GenerationJob, error) {
	raw, err := d.invoke(ctx, env)
	if err != nil {
		return nil, err
	}
	result, err := adapter.Parse(raw)
	if err != nil {
		return nil, err
	}
	outputKey, err := d.materializer.MaterializeOutput(ctx, result.ArtifactURL, job.ID, string(job.Kind))
	if err != nil {
		return nil, err
	}
	job.OutputKey = outputKey
	for k, v := range result.Metadata {
		job.Metadata[k] = v
	}
	if err := d.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persist resolved job: %w", err)
	}
	d.logger.Info().Str("job_id", job.ID).Str("provider", adapter.Name()).Msg("dispatch: resolved synchronously")
	return job, nil
}

// dispatchAsync hands the envelope to the delivery layer. The pending record
// is created only after the layer confirms acceptance; a rejected submission
// surfaces synchronously with no orphaned record.
func (d *Dispatcher) dispatchAsync(ctx context.Context, job *domain.GenerationJob, env *providers.Envelope) (*domain.GenerationJob, error) {
	env.CallbackURL = d.callbackURL("/v1/callbacks/generation", job)
	env.FailureCallbackURL = d.callbackURL("/v1/callbacks/generation/failure", job)

	if err := d.publisher.Publish(ctx, env); err != nil {
		return nil, err
	}
	if err := d.repo.Create(ctx, job); err != nil {
		// The provider call is already in flight; its callback will find no
		// record and be treated as late. Nothing to roll back here.
		return nil, fmt.Errorf("persist pending job: %w", err)
	}
	d.logger.Info().Str("job_id", job.ID).Str("model", job.Model).Msg("dispatch: accepted for async delivery")
	return job, nil
}

func (d *Dispatcher) callbackURL(path string, job *domain.GenerationJob) string {
	q := url.Values{}
	q.Set("job_id", job.ID)
	q.Set("user_id", job.UserID)
	return d.publicBaseURL + path + "?" + q.Encode()
}

// invoke performs the outbound HTTP call for synchronous providers. A
// non-success status surfaces the provider's raw error body, whatever its
// format, instead of a generic message.
func (d *Dispatcher) invoke(ctx context.Context, env *providers.Envelope) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.URL, strings.NewReader(string(env.Body)))
	if err != nil {
		return nil, fmt.Errorf("dispatch: build provider request: %w", err)
	}
	for name, value := range env.Headers {
		req.Header.Set(name, value)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatch: provider request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dispatch: read provider response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

// ResolveSeed turns the submitted seed into the concrete integer persisted
// with the job: "random" (or empty) resolves to a fresh pseudo-random value
// exactly once, anything else must parse as a non-negative integer.
func ResolveSeed(seed string) (int, error) {
	seed = strings.TrimSpace(strings.ToLower(seed))
	if seed == "" || seed == SeedRandom {
		return int(rand.Int31n(1 << 30)), nil
	}
	value, err := strconv.Atoi(seed)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: seed %q is not an integer", domain.ErrInvalidRequest, seed)
	}
	return value, nil
}

func mergeMetadata(extra map[string]any, decision routing.Decision) map[string]any {
	metadata := map[string]any{
		"provider":       decision.Provider,
		"provider_model": decision.ProviderModelID,
	}
	for k, v := range extra {
		metadata[k] = v
	}
	return metadata
}
