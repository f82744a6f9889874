package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWritesUnderBasePath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if store.BasePath() != dir {
		t.Fatalf("BasePath = %q, want %q", store.BasePath(), dir)
	}
	key, err := store.Write(context.Background(), "generated/images/job-1/image-01.png", []byte("payload"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "generated/images/job-1/image-01.png" {
		t.Fatalf("unexpected key %q", key)
	}
	// Keys must resolve under the base path so the static file server can
	// hand them out verbatim.
	data, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("stored bytes = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.png", []byte("x")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
	if _, err := store.Write(context.Background(), "/../../etc/cron.d/x", []byte("x")); err == nil {
		t.Fatalf("expected rooted traversal key to be rejected")
	}
}
