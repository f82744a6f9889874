package artifact

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"server/internal/storage"
)

func newTestMaterializer(t *testing.T, client *http.Client) (*Materializer, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	m := New(Options{
		Store:         store,
		HTTPClient:    client,
		PublicBaseURL: "https://studio.example.com",
		S3Bucket:      "generations",
	})
	return m, store
}

func TestMaterializeInputPassesThroughRemoteURL(t *testing.T) {
	m, _ := newTestMaterializer(t, nil)
	url, err := m.MaterializeInput(context.Background(), "https://cdn.example.com/ref.png", "job-1", "reference")
	if err != nil {
		t.Fatalf("MaterializeInput: %v", err)
	}
	if url != "https://cdn.example.com/ref.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestMaterializeInputStoresInlineBlob(t *testing.T) {
	m, store := newTestMaterializer(t, nil)
	blob := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pixels"))
	url, err := m.MaterializeInput(context.Background(), blob, "job-1", "mask")
	if err != nil {
		t.Fatalf("MaterializeInput: %v", err)
	}
	if url != "https://studio.example.com/static/inputs/job-1/mask.png" {
		t.Fatalf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash("inputs/job-1/mask.png")))
	if err != nil {
		t.Fatalf("stored blob missing: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("stored blob = %q", data)
	}
}

func TestMaterializeInputEmptyReferenceIsNoop(t *testing.T) {
	m, _ := newTestMaterializer(t, nil)
	url, err := m.MaterializeInput(context.Background(), "", "job-1", "reference")
	if err != nil || url != "" {
		t.Fatalf("got (%q, %v)", url, err)
	}
}

func TestMaterializeOutputDownloadsRemoteArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	m, store := newTestMaterializer(t, srv.Client())
	key, err := m.MaterializeOutput(context.Background(), srv.URL+"/out.jpg", "job-2", "image")
	if err != nil {
		t.Fatalf("MaterializeOutput: %v", err)
	}
	if key != "generated/images/job-2/output.jpg" {
		t.Fatalf("key = %q", key)
	}
	if _, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(key))); err != nil {
		t.Fatalf("downloaded artifact not stored: %v", err)
	}
}

func TestMaterializeOutputRebuildsBareProviderPath(t *testing.T) {
	m, _ := newTestMaterializer(t, nil)
	key, err := m.MaterializeOutput(context.Background(), "outputs/job-3/video.mp4", "job-3", "video")
	if err != nil {
		t.Fatalf("MaterializeOutput: %v", err)
	}
	if key != "s3://generations/outputs/job-3/video.mp4" {
		t.Fatalf("key = %q", key)
	}
}

func TestMaterializeOutputAcceptsLocalKey(t *testing.T) {
	m, _ := newTestMaterializer(t, nil)
	key, err := m.MaterializeOutput(context.Background(), "generated/images/job-4/output.png", "job-4", "image")
	if err != nil {
		t.Fatalf("MaterializeOutput: %v", err)
	}
	if key != "generated/images/job-4/output.png" {
		t.Fatalf("key = %q", key)
	}
}

func TestMaterializeOutputFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	m, _ := newTestMaterializer(t, srv.Client())
	if _, err := m.MaterializeOutput(context.Background(), srv.URL+"/out.png", "job-5", "image"); err == nil {
		t.Fatalf("expected error for non-success download")
	}
	if _, err := m.MaterializeOutput(context.Background(), "", "job-5", "image"); err == nil {
		t.Fatalf("expected error for empty reference")
	}
}

func TestMaterializeOutputStoresInlineVideoUnderVideos(t *testing.T) {
	m, _ := newTestMaterializer(t, nil)
	blob := "data:video/mp4;base64," + base64.StdEncoding.EncodeToString([]byte("frames"))
	key, err := m.MaterializeOutput(context.Background(), blob, "job-6", "video")
	if err != nil {
		t.Fatalf("MaterializeOutput: %v", err)
	}
	if !strings.HasPrefix(key, "generated/videos/job-6/") || !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("key = %q", key)
	}
}
