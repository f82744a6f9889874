package providers

import "server/internal/domain"

// BuildRequest carries the normalized, already-routed job parameters an
// adapter shapes into its provider's wire format. Reference and mask images
// are always fetchable URLs at this point; inline blobs have been
// materialized upstream.
type BuildRequest struct {
	JobID        string
	UserID       string
	ModelID      string
	Task         domain.TaskType
	Prompt       string
	Steps        int
	Seed         int
	Creativity   int
	AspectRatio  string
	ReferenceURL string
	MaskURL      string
	Duration     int
}

// Envelope is the fully built outbound call: where to POST, with which
// headers, and what body. For asynchronous providers the dispatcher fills the
// correlation URLs before handing the envelope to the delivery layer; the job
// and user ids travel in those URLs' query strings.
type Envelope struct {
	URL     string
	Headers map[string]string
	Body    []byte

	CallbackURL        string
	FailureCallbackURL string
}

// Result is a provider response translated back into generic terms. The
// artifact location may still be remote; the caller materializes it into
// local storage before persisting.
type Result struct {
	ArtifactURL string
	Metadata    map[string]any
}

// Adapter is the per-provider-family contract. Adding a provider means adding
// one implementation; the dispatcher and correlator never change.
type Adapter interface {
	Name() string

	// Async reports whether the provider is invoked through the durable
	// delivery layer (true) or called directly and waited on (false).
	Async() bool

	Build(req BuildRequest) (*Envelope, error)
}

// SyncAdapter is implemented by providers whose HTTP response carries the
// generation result directly.
type SyncAdapter interface {
	Adapter
	Parse(raw []byte) (*Result, error)
}

// Registry indexes adapters by provider family name.
type Registry map[string]Adapter

// Lookup returns the adapter for a routing decision's provider.
func (r Registry) Lookup(provider string) (Adapter, bool) {
	a, ok := r[provider]
	return a, ok
}
