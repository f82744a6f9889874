// Package artifact moves image and video payloads between the forms the rest
// of the system needs: inline data blobs become fetchable URLs before a
// provider call, and remote provider outputs become locally addressable
// storage keys before they are persisted on a job record.
package artifact

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"server/internal/storage"
)

const localKeyPrefix = "generated/"

// Materializer resolves artifact references against local storage.
type Materializer struct {
	store         *storage.FileStore
	httpClient    *http.Client
	publicBaseURL string
	s3Bucket      string
}

// Options configures a Materializer.
type Options struct {
	Store         *storage.FileStore
	HTTPClient    *http.Client
	PublicBaseURL string
	S3Bucket      string
}

// New constructs a Materializer with sane defaults.
func New(opts Options) *Materializer {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Materializer{
		store:         opts.Store,
		httpClient:    httpClient,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		s3Bucket:      opts.S3Bucket,
	}
}

// PublicURL returns the externally fetchable address of a stored key.
func (m *Materializer) PublicURL(key string) string {
	return m.publicBaseURL + "/static/" + strings.TrimLeft(key, "/")
}

// MaterializeInput exchanges a reference or mask image for a URL a remote
// provider can fetch. Inline data blobs are written to storage first; http(s)
// references pass through untouched.
func (m *Materializer) MaterializeInput(ctx context.Context, ref, jobID, label string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if strings.HasPrefix(ref, "data:") {
		data, mime, err := decodeDataURL(ref)
		if err != nil {
			return "", fmt.Errorf("artifact: decode %s blob: %w", label, err)
		}
		key := fmt.Sprintf("inputs/%s/%s%s", jobID, label, extensionForMIME(mime))
		saved, err := m.store.Write(ctx, key, data)
		if err != nil {
			return "", fmt.Errorf("artifact: persist %s blob: %w", label, err)
		}
		return m.PublicURL(saved), nil
	}
	return "", fmt.Errorf("artifact: unsupported %s reference %q", label, truncate(ref, 32))
}

// MaterializeOutput turns a provider artifact reference into the key stored
// on the job record. Remote http(s) artifacts are downloaded and re-uploaded
// so the persisted location never carries a third-party expiry; bare
// provider-internal paths get their object-store prefix reconstructed; local
// keys are accepted as-is.
func (m *Materializer) MaterializeOutput(ctx context.Context, ref, jobID, kind string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("artifact: empty output reference")
	}
	switch {
	case strings.HasPrefix(ref, localKeyPrefix):
		return ref, nil
	case strings.HasPrefix(ref, "s3://"):
		return ref, nil
	case strings.HasPrefix(ref, "data:"):
		data, mime, err := decodeDataURL(ref)
		if err != nil {
			return "", fmt.Errorf("artifact: decode inline output: %w", err)
		}
		return m.storeOutput(ctx, jobID, kind, mime, data)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, mime, err := m.download(ctx, ref)
		if err != nil {
			return "", err
		}
		return m.storeOutput(ctx, jobID, kind, mime, data)
	default:
		// Bare provider-internal path: rebuild the object-store address.
		return "s3://" + m.s3Bucket + "/" + strings.TrimLeft(ref, "/"), nil
	}
}

func (m *Materializer) storeOutput(ctx context.Context, jobID, kind, mime string, data []byte) (string, error) {
	category := "images"
	if kind == "video" || strings.HasPrefix(mime, "video/") {
		category = "videos"
	}
	key := fmt.Sprintf("%s%s/%s/output%s", localKeyPrefix, category, jobID, extensionForMIME(mime))
	saved, err := m.store.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("artifact: persist output: %w", err)
	}
	return saved, nil
}

func (m *Materializer) download(ctx context.Context, artifactURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("artifact: build download request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("artifact: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("artifact: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("artifact: read download: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = mimeFromPath(artifactURL)
	}
	return data, mime, nil
}

func decodeDataURL(ref string) ([]byte, string, error) {
	rest := strings.TrimPrefix(ref, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data url")
	}
	mime := meta
	if idx := strings.Index(meta, ";"); idx >= 0 {
		mime = meta[:idx]
	}
	if !strings.Contains(meta, "base64") {
		return nil, "", errors.New("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

func mimeFromPath(p string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(p, "?", 2)[0])) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp4":
		return "video/mp4"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ".png"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
