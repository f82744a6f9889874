package providers

import "testing"

func TestDimensionsKnownLabels(t *testing.T) {
	w, h := Dimensions("16:9")
	if w != 1344 || h != 768 {
		t.Fatalf("16:9 = %dx%d", w, h)
	}
	w, h = Dimensions("9:16")
	if w != 768 || h != 1344 {
		t.Fatalf("9:16 = %dx%d", w, h)
	}
}

func TestDimensionsUnknownLabelFallsBackToSquare(t *testing.T) {
	w, h := Dimensions("21:9")
	if w != 1024 || h != 1024 {
		t.Fatalf("fallback = %dx%d, want 1024x1024", w, h)
	}
}

func TestClampStepsAppliesModelCap(t *testing.T) {
	if got := ClampSteps("black-forest-labs/FLUX.1-schnell", 40); got != 12 {
		t.Fatalf("clamped steps = %d, want 12", got)
	}
	if got := ClampSteps("black-forest-labs/FLUX.1-schnell", 8); got != 8 {
		t.Fatalf("steps below cap changed: %d", got)
	}
	if got := ClampSteps("unknown/model", 200); got != defaultStepCap {
		t.Fatalf("default cap = %d, want %d", got, defaultStepCap)
	}
	if got := ClampSteps("unknown/model", 0); got != 1 {
		t.Fatalf("non-positive steps = %d, want 1", got)
	}
}

func TestPromptStrengthScale(t *testing.T) {
	strength, ok := PromptStrength(1, "a castle", true)
	if !ok || strength != 0.0 {
		t.Fatalf("creativity 1 = (%v, %v), want (0.0, true)", strength, ok)
	}
	strength, ok = PromptStrength(10, "a castle", true)
	if !ok || strength != 1.0 {
		t.Fatalf("creativity 10 = (%v, %v), want (1.0, true)", strength, ok)
	}
	strength, ok = PromptStrength(5, "a castle", true)
	if !ok || strength != 4.0/9.0 {
		t.Fatalf("creativity 5 = (%v, %v)", strength, ok)
	}
}

func TestPromptStrengthUnsetWithoutReference(t *testing.T) {
	if _, ok := PromptStrength(10, "a castle", false); ok {
		t.Fatalf("strength should be unset without a reference image")
	}
}

func TestPromptStrengthUnsetForCreativityZero(t *testing.T) {
	// 0 sits outside the documented 1–10 scale and means no conditioning.
	if _, ok := PromptStrength(0, "a castle", true); ok {
		t.Fatalf("strength should be unset for creativity 0")
	}
}

func TestPromptStrengthUnsetWithoutPrompt(t *testing.T) {
	if _, ok := PromptStrength(5, "", true); ok {
		t.Fatalf("strength should be unset without a prompt")
	}
}
