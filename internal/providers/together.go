package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TogetherAdapter shapes requests for the Together image API. Together
// answers synchronously: the generation result arrives in the HTTP response
// of the submission call itself.
type TogetherAdapter struct {
	apiKey  string
	baseURL string
}

// NewTogetherAdapter constructs the adapter with sane defaults.
func NewTogetherAdapter(apiKey, baseURL string) *TogetherAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.together.xyz/v1"
	}
	return &TogetherAdapter{apiKey: strings.TrimSpace(apiKey), baseURL: baseURL}
}

func (a *TogetherAdapter) Name() string { return "together" }

func (a *TogetherAdapter) Async() bool { return false }

type togetherRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Steps          int      `json:"steps"`
	Seed           int      `json:"seed"`
	N              int      `json:"n"`
	ResponseFormat string   `json:"response_format"`
	ImageURL       string   `json:"image_url,omitempty"`
	PromptStrength *float64 `json:"prompt_strength,omitempty"`
}

type togetherResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Model string `json:"model"`
}

// Build produces the outbound call envelope for a routed request.
func (a *TogetherAdapter) Build(req BuildRequest) (*Envelope, error) {
	if a.apiKey == "" {
		return nil, errors.New("together: api key is required")
	}
	width, height := Dimensions(req.AspectRatio)
	payload := togetherRequest{
		Model:          req.ModelID,
		Prompt:         req.Prompt,
		Width:          width,
		Height:         height,
		Steps:          ClampSteps(req.ModelID, req.Steps),
		Seed:           req.Seed,
		N:              1,
		ResponseFormat: "b64_json",
		ImageURL:       req.ReferenceURL,
	}
	if strength, ok := PromptStrength(req.Creativity, req.Prompt, req.ReferenceURL != ""); ok {
		payload.PromptStrength = &strength
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("together: encode request: %w", err)
	}
	return &Envelope{
		URL: a.baseURL + "/images/generations",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + a.apiKey,
		},
		Body: body,
	}, nil
}

// Parse translates Together's response into a generic result. Together may
// return either a hosted URL or inline base64; inline data is surfaced as a
// data URL for the materializer to decode.
func (a *TogetherAdapter) Parse(raw []byte) (*Result, error) {
	var decoded togetherResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("together: decode response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, errors.New("together: empty response data")
	}
	first := decoded.Data[0]
	artifact := strings.TrimSpace(first.URL)
	if artifact == "" && first.B64JSON != "" {
		artifact = "data:image/png;base64," + first.B64JSON
	}
	if artifact == "" {
		return nil, errors.New("together: response carries no artifact")
	}
	return &Result{
		ArtifactURL: artifact,
		Metadata:    map[string]any{"provider": a.Name(), "provider_model": decoded.Model},
	}, nil
}

var (
	_ Adapter     = (*TogetherAdapter)(nil)
	_ SyncAdapter = (*TogetherAdapter)(nil)
)
