package callback

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is the outer delivery envelope: the status the provider answered
// with and its response body, base64 encoded by the relay.
type Payload struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// DecodePayload parses the raw webhook body into the outer envelope.
func DecodePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("callback: decode envelope: %w", err)
	}
	return &p, nil
}

// InnerBody decodes the base64 provider response carried in the envelope.
func (p *Payload) InnerBody() ([]byte, error) {
	if p.Body == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(p.Body)
	if err != nil {
		// Some relays use the URL-safe alphabet.
		data, err = base64.URLEncoding.DecodeString(p.Body)
	}
	if err != nil {
		return nil, fmt.Errorf("callback: decode body: %w", err)
	}
	return data, nil
}

// Succeeded reports whether the relayed provider status is a 2xx.
func (p *Payload) Succeeded() bool {
	return p.Status >= 200 && p.Status < 300
}

// ExtractArtifact probes the inner provider JSON for an artifact reference.
// Each provider family shapes its response differently, so the probe walks
// the known locations in order rather than binding to one schema. It returns
// false when no usable reference is present, which the correlator treats the
// same as an explicit failure.
func ExtractArtifact(inner []byte) (string, bool) {
	if len(inner) == 0 {
		return "", false
	}
	var doc map[string]any
	if err := json.Unmarshal(inner, &doc); err != nil {
		return "", false
	}

	// fal.ai images: {"images":[{"url":...}]}
	if images, ok := doc["images"].([]any); ok && len(images) > 0 {
		if first, ok := images[0].(map[string]any); ok {
			if url := stringField(first, "url"); url != "" {
				return url, true
			}
		}
	}
	// fal.ai video: {"video":{"url":...}}
	if video, ok := doc["video"].(map[string]any); ok {
		if url := stringField(video, "url"); url != "" {
			return url, true
		}
	}
	// Replicate: "output" is a URL or a list of URLs.
	switch output := doc["output"].(type) {
	case string:
		if ref := strings.TrimSpace(output); ref != "" {
			return ref, true
		}
	case []any:
		for _, item := range output {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	// Modal endpoints answer {"url":...} or {"result":...}.
	if url := stringField(doc, "url"); url != "" {
		return url, true
	}
	if result := stringField(doc, "result"); result != "" {
		return result, true
	}
	return "", false
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return strings.TrimSpace(s)
}
