package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"server/internal/domain"
)

// FalAdapter shapes requests for fal.ai endpoints. Calls are delivered
// through the durable layer, which relays the response body to the
// correlation webhook.
type FalAdapter struct {
	apiKey  string
	baseURL string
}

// NewFalAdapter constructs the adapter with sane defaults.
func NewFalAdapter(apiKey, baseURL string) *FalAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://fal.run"
	}
	return &FalAdapter{apiKey: strings.TrimSpace(apiKey), baseURL: baseURL}
}

func (a *FalAdapter) Name() string { return "falai" }

func (a *FalAdapter) Async() bool { return true }

type falImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type falRequest struct {
	Prompt            string        `json:"prompt"`
	ImageSize         *falImageSize `json:"image_size,omitempty"`
	NumInferenceSteps int           `json:"num_inference_steps,omitempty"`
	Seed              int           `json:"seed,omitempty"`
	Strength          *float64      `json:"strength,omitempty"`
	ImageURL          string        `json:"image_url,omitempty"`
	MaskURL           string        `json:"mask_url,omitempty"`
	AspectRatio       string        `json:"aspect_ratio,omitempty"`
	Duration          int           `json:"duration,omitempty"`
}

// Build produces the outbound call envelope for a routed request. Video
// endpoints take the aspect-ratio label and a duration; image endpoints take
// pixel dimensions.
func (a *FalAdapter) Build(req BuildRequest) (*Envelope, error) {
	if a.apiKey == "" {
		return nil, errors.New("falai: api key is required")
	}
	payload := falRequest{
		Prompt:   req.Prompt,
		Seed:     req.Seed,
		ImageURL: req.ReferenceURL,
		MaskURL:  req.MaskURL,
	}
	switch req.Task {
	case domain.TaskTextToVideo, domain.TaskImageToVideo:
		payload.AspectRatio = req.AspectRatio
		payload.Duration = req.Duration
	default:
		width, height := Dimensions(req.AspectRatio)
		payload.ImageSize = &falImageSize{Width: width, Height: height}
		payload.NumInferenceSteps = ClampSteps(req.ModelID, req.Steps)
	}
	if strength, ok := PromptStrength(req.Creativity, req.Prompt, req.ReferenceURL != ""); ok {
		payload.Strength = &strength
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("falai: encode request: %w", err)
	}
	return &Envelope{
		URL: a.baseURL + "/" + strings.TrimLeft(req.ModelID, "/"),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Key " + a.apiKey,
		},
		Body: body,
	}, nil
}

var _ Adapter = (*FalAdapter)(nil)
