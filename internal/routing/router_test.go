package routing

import (
	"errors"
	"testing"

	"server/internal/domain"
)

func TestRouteIsDeterministicForAllTableEntries(t *testing.T) {
	r := NewRouter()
	tasks := []domain.TaskType{
		domain.TaskTextToImage, domain.TaskImageToImage,
		domain.TaskTextToVideo, domain.TaskImageToVideo,
	}
	for _, model := range r.Models() {
		for _, task := range tasks {
			first, err := r.Route(model, task)
			if err != nil {
				continue
			}
			second, err := r.Route(model, task)
			if err != nil {
				t.Fatalf("route(%s, %s) failed on repeat: %v", model, task, err)
			}
			if first != second {
				t.Fatalf("route(%s, %s) not deterministic: %v vs %v", model, task, first, second)
			}
			if first.Provider == "" || first.ProviderModelID == "" {
				t.Fatalf("route(%s, %s) returned empty decision %+v", model, task, first)
			}
		}
	}
}

func TestRouteKnownPairs(t *testing.T) {
	r := NewRouter()
	d, err := r.Route("flux-schnell", domain.TaskTextToImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Provider != ProviderTogether || d.ProviderModelID != "black-forest-labs/FLUX.1-schnell" {
		t.Fatalf("unexpected decision %+v", d)
	}

	d, err = r.Route("kling-video", domain.TaskImageToVideo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Provider != ProviderFal {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestRouteUnknownModelIsHardError(t *testing.T) {
	r := NewRouter()
	_, err := r.Route("imagined-model", domain.TaskTextToImage)
	if !errors.Is(err, domain.ErrNoRoute) {
		t.Fatalf("error = %v, want ErrNoRoute", err)
	}
}

func TestRouteMissingVariantIsHardError(t *testing.T) {
	r := NewRouter()
	// upscale has no prompt-only mapping and must not silently fall back.
	_, err := r.Route(ModelUpscale, domain.TaskTextToImage)
	if !errors.Is(err, domain.ErrNoRoute) {
		t.Fatalf("error = %v, want ErrNoRoute", err)
	}
	// fill is conditioned-only as well.
	if _, err := r.Route(ModelFill, domain.TaskTextToImage); !errors.Is(err, domain.ErrNoRoute) {
		t.Fatalf("error = %v, want ErrNoRoute", err)
	}
}
