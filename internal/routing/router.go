package routing

import (
	"fmt"

	"server/internal/domain"
)

// Decision names the provider family and the provider-specific model id a
// request should be sent to. It is ephemeral and never persisted.
type Decision struct {
	Provider        string
	ProviderModelID string
}

// target is one side of a model's mapping: either the prompt-only variant or
// the reference-conditioned variant.
type target struct {
	Provider string
	ModelID  string
}

// entry maps a public model name onto its provider targets. Either side may
// be absent; a text-only model has no conditioned target and vice versa.
type entry struct {
	Text        *target
	Conditioned *target
}

// Router resolves (model name, task type) pairs against a static table. It is
// a pure lookup with no network or database access.
type Router struct {
	table map[string]entry
}

// NewRouter builds a router over the default model table.
func NewRouter() *Router {
	return &Router{table: defaultTable}
}

// Route resolves the provider target for the given model and task. Unknown
// models and unmapped task variants are hard errors wrapping domain.ErrNoRoute;
// the caller must reject the whole request rather than fall back.
func (r *Router) Route(modelName string, task domain.TaskType) (Decision, error) {
	e, ok := r.table[modelName]
	if !ok {
		return Decision{}, fmt.Errorf("%w: unknown model %q", domain.ErrNoRoute, modelName)
	}
	var t *target
	switch task {
	case domain.TaskTextToImage, domain.TaskTextToVideo:
		t = e.Text
	case domain.TaskImageToImage, domain.TaskImageToVideo:
		t = e.Conditioned
	default:
		return Decision{}, fmt.Errorf("%w: unknown task %q", domain.ErrNoRoute, task)
	}
	if t == nil {
		return Decision{}, fmt.Errorf("%w: model %q does not support %s", domain.ErrNoRoute, modelName, task)
	}
	return Decision{Provider: t.Provider, ProviderModelID: t.ModelID}, nil
}

// Models returns the public model names the router knows about.
func (r *Router) Models() []string {
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	return names
}
