package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	handler := RequestID(Logger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := buf.String()
	if !strings.Contains(line, `"request_id":"req-42"`) {
		t.Fatalf("log line missing request id: %s", line)
	}
	if !strings.Contains(line, "204") {
		t.Fatalf("log line missing status: %s", line)
	}
}

func TestLoggerPreservesFlusher(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	var flushable bool
	handler := Logger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !flushable {
		t.Fatalf("wrapped writer lost http.Flusher")
	}
}
