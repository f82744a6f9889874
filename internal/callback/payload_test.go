package callback

import (
	"encoding/base64"
	"testing"
)

func encodeInner(t *testing.T, inner string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(inner))
}

func TestDecodePayloadAndInnerBody(t *testing.T) {
	raw := []byte(`{"status":200,"body":"` + encodeInner(t, `{"url":"https://cdn.example.com/a.png"}`) + `"}`)
	p, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if !p.Succeeded() {
		t.Fatalf("status 200 not reported as success")
	}
	inner, err := p.InnerBody()
	if err != nil {
		t.Fatalf("InnerBody: %v", err)
	}
	if string(inner) != `{"url":"https://cdn.example.com/a.png"}` {
		t.Fatalf("inner = %s", inner)
	}
}

func TestInnerBodyAcceptsURLSafeAlphabet(t *testing.T) {
	inner := `{"output":"https://replicate.delivery/pbxt/abc?x=1&y=~"}`
	p := &Payload{Status: 200, Body: base64.URLEncoding.EncodeToString([]byte(inner))}
	got, err := p.InnerBody()
	if err != nil {
		t.Fatalf("InnerBody: %v", err)
	}
	if string(got) != inner {
		t.Fatalf("inner = %s", got)
	}
}

func TestExtractArtifactKnownShapes(t *testing.T) {
	cases := []struct {
		name  string
		inner string
		want  string
	}{
		{"fal images", `{"images":[{"url":"https://fal.media/x.png","width":1024}]}`, "https://fal.media/x.png"},
		{"fal video", `{"video":{"url":"https://fal.media/x.mp4"}}`, "https://fal.media/x.mp4"},
		{"replicate string output", `{"id":"p1","output":"https://replicate.delivery/x.png"}`, "https://replicate.delivery/x.png"},
		{"replicate list output", `{"output":["https://replicate.delivery/0.png","https://replicate.delivery/1.png"]}`, "https://replicate.delivery/0.png"},
		{"modal url", `{"url":"generated/videos/j1/output.mp4"}`, "generated/videos/j1/output.mp4"},
		{"modal result", `{"result":"outputs/j1/final.png"}`, "outputs/j1/final.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractArtifact([]byte(tc.inner))
			if !ok {
				t.Fatalf("no artifact extracted from %s", tc.inner)
			}
			if got != tc.want {
				t.Fatalf("artifact = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractArtifactAbsent(t *testing.T) {
	for _, inner := range []string{
		`{}`,
		`{"detail":"NSFW content detected"}`,
		`{"images":[]}`,
		`{"output":""}`,
		`{"output":[]}`,
		`not json at all`,
		``,
	} {
		if ref, ok := ExtractArtifact([]byte(inner)); ok {
			t.Fatalf("extracted %q from %s", ref, inner)
		}
	}
}
