package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ModalAdapter shapes requests for the self-hosted Modal inference backend.
// The backend runs the generation inside the HTTP call and answers with a
// bare object-storage path, which the correlator re-prefixes when it lands.
type ModalAdapter struct {
	token   string
	baseURL string
}

// NewModalAdapter constructs the adapter.
func NewModalAdapter(token, baseURL string) *ModalAdapter {
	return &ModalAdapter{token: strings.TrimSpace(token), baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *ModalAdapter) Name() string { return "modal" }

func (a *ModalAdapter) Async() bool { return true }

type modalRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Steps       int      `json:"steps"`
	Seed        int      `json:"seed"`
	ImageURL    string   `json:"image_url,omitempty"`
	MaskURL     string   `json:"mask_url,omitempty"`
	Strength    *float64 `json:"strength,omitempty"`
	DurationSec int      `json:"duration_seconds,omitempty"`
}

// Build produces the outbound call envelope for a routed request.
func (a *ModalAdapter) Build(req BuildRequest) (*Envelope, error) {
	if a.baseURL == "" {
		return nil, errors.New("modal: base url is required")
	}
	width, height := Dimensions(req.AspectRatio)
	payload := modalRequest{
		Model:       req.ModelID,
		Prompt:      req.Prompt,
		Width:       width,
		Height:      height,
		Steps:       ClampSteps(req.ModelID, req.Steps),
		Seed:        req.Seed,
		ImageURL:    req.ReferenceURL,
		MaskURL:     req.MaskURL,
		DurationSec: req.Duration,
	}
	if strength, ok := PromptStrength(req.Creativity, req.Prompt, req.ReferenceURL != ""); ok {
		payload.Strength = &strength
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("modal: encode request: %w", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if a.token != "" {
		headers["Authorization"] = "Bearer " + a.token
	}
	return &Envelope{
		URL:     a.baseURL + "/generate",
		Headers: headers,
		Body:    body,
	}, nil
}

var _ Adapter = (*ModalAdapter)(nil)
