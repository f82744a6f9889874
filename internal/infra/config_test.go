package infra

import "testing"

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CALLBACK_SECRET", "test-secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRequiresCallbackSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CALLBACK_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when CALLBACK_SECRET is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CALLBACK_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("QUEUE_URL", "")
	t.Setenv("FAL_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.QueueURL != "https://qstash.upstash.io" {
		t.Fatalf("QueueURL = %q", cfg.QueueURL)
	}
	// The synchronous endpoint: its HTTP response carries the finished
	// result, which the delivery layer relays to the callback. The queue
	// endpoint would answer with an enqueue ack that has no artifact.
	if cfg.FalBaseURL != "https://fal.run" {
		t.Fatalf("FalBaseURL = %q, want https://fal.run", cfg.FalBaseURL)
	}
	if cfg.HTTPWriteTimeout != 0 {
		t.Fatalf("HTTPWriteTimeout = %v, want 0 (unlimited, SSE connections)", cfg.HTTPWriteTimeout)
	}
}

func TestLoadConfigHonorsExplicitValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CALLBACK_SECRET", "test-secret")
	t.Setenv("PUBLIC_BASE_URL", "https://studio.example.com")
	t.Setenv("SSE_KEEPALIVE_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublicBaseURL != "https://studio.example.com" {
		t.Fatalf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.KeepAliveInterval.Seconds() != 30 {
		t.Fatalf("KeepAliveInterval = %v, want 30s", cfg.KeepAliveInterval)
	}
}
