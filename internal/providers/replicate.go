package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReplicateAdapter shapes requests for Replicate's predictions API. The
// `Prefer: wait` header keeps the prediction response synchronous from the
// delivery layer's point of view, so the relayed callback body carries the
// finished output.
type ReplicateAdapter struct {
	apiToken string
	baseURL  string
}

// NewReplicateAdapter constructs the adapter with sane defaults.
func NewReplicateAdapter(apiToken, baseURL string) *ReplicateAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	return &ReplicateAdapter{apiToken: strings.TrimSpace(apiToken), baseURL: baseURL}
}

func (a *ReplicateAdapter) Name() string { return "replicate" }

func (a *ReplicateAdapter) Async() bool { return true }

type replicateInput struct {
	Prompt            string   `json:"prompt"`
	Width             int      `json:"width,omitempty"`
	Height            int      `json:"height,omitempty"`
	NumInferenceSteps int      `json:"num_inference_steps,omitempty"`
	Seed              int      `json:"seed,omitempty"`
	Image             string   `json:"image,omitempty"`
	Mask              string   `json:"mask,omitempty"`
	PromptStrength    *float64 `json:"prompt_strength,omitempty"`
}

type replicateRequest struct {
	Input replicateInput `json:"input"`
}

// Build produces the outbound call envelope for a routed request.
func (a *ReplicateAdapter) Build(req BuildRequest) (*Envelope, error) {
	if a.apiToken == "" {
		return nil, errors.New("replicate: api token is required")
	}
	width, height := Dimensions(req.AspectRatio)
	payload := replicateRequest{Input: replicateInput{
		Prompt:            req.Prompt,
		Width:             width,
		Height:            height,
		NumInferenceSteps: ClampSteps(req.ModelID, req.Steps),
		Seed:              req.Seed,
		Image:             req.ReferenceURL,
		Mask:              req.MaskURL,
	}}
	if strength, ok := PromptStrength(req.Creativity, req.Prompt, req.ReferenceURL != ""); ok {
		payload.Input.PromptStrength = &strength
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	return &Envelope{
		URL: fmt.Sprintf("%s/models/%s/predictions", a.baseURL, strings.TrimLeft(req.ModelID, "/")),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + a.apiToken,
			"Prefer":        "wait=60",
		},
		Body: body,
	}, nil
}

var _ Adapter = (*ReplicateAdapter)(nil)
