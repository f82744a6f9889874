package providers

// Dimensions maps an aspect-ratio label onto concrete pixel dimensions. The
// labels are the only values the UI offers; anything else falls back to
// square output rather than failing the request.
func Dimensions(aspectRatio string) (width, height int) {
	switch aspectRatio {
	case "16:9":
		return 1344, 768
	case "9:16":
		return 768, 1344
	case "4:3":
		return 1152, 896
	case "3:4":
		return 896, 1152
	case "3:2":
		return 1216, 832
	case "2:3":
		return 832, 1216
	default:
		return 1024, 1024
	}
}

// stepCaps holds the hard per-model maximum step counts. Requests above the
// cap are clamped silently, never rejected.
var stepCaps = map[string]int{
	"black-forest-labs/FLUX.1-schnell": 12,
	"black-forest-labs/FLUX.1-redux":   12,
	"black-forest-labs/FLUX.1-dev":     50,
	"black-forest-labs/flux-dev":       50,
	"fal-ai/flux-pro/v1.1":             50,
	"fal-ai/flux-pro/v1.1/redux":       50,
	"fal-ai/flux-pro/v1/fill":          50,
	"stability-ai/sdxl":                50,
	"philz1337x/clarity-upscaler":      20,
}

const defaultStepCap = 50

// ClampSteps caps the requested step count at the model's maximum and floors
// non-positive values at 1.
func ClampSteps(modelID string, steps int) int {
	if steps <= 0 {
		steps = 1
	}
	limit, ok := stepCaps[modelID]
	if !ok {
		limit = defaultStepCap
	}
	if steps > limit {
		return limit
	}
	return steps
}

// PromptStrength derives the reference-image influence scalar from the 0–10
// creativity input: creativity 1 maps to 0.0 and 10 to 1.0. It is only
// defined when both a prompt and a reference image are present; creativity 0
// sits outside the documented 1–10 scale and is treated as
// "no reference conditioning", leaving the strength unset.
func PromptStrength(creativity int, prompt string, hasReference bool) (float64, bool) {
	if prompt == "" || !hasReference || creativity < 1 {
		return 0, false
	}
	if creativity > 10 {
		creativity = 10
	}
	return float64(creativity-1) / 9, true
}
