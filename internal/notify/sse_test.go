package notify

import (
	"bufio"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSSEHandlerStreamsEventsAndKeepAlives(t *testing.T) {
	hub := NewHub()
	handler := NewSSEHandler(hub, 40*time.Millisecond, zerolog.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/v1/notifications/user-1", nil).WithContext(ctx)

	pr, pw := io.Pipe()
	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder(), pipe: pw}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pw.Close()
		handler.Serve(rec, req, "user-1")
	}()

	reader := bufio.NewReader(pr)

	// Wait for the subscriber to register before publishing.
	waitFor(t, func() bool { return hub.Viewers("user-1") == 1 })
	hub.Publish("user-1", Event{Name: EventImageUpdated, JobID: "job-1", OutputKey: "generated/images/job-1/output.png"})

	var sawEvent, sawKeepAlive bool
	deadline := time.After(2 * time.Second)
	for !sawEvent || !sawKeepAlive {
		lineCh := make(chan string, 1)
		go func() {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			lineCh <- line
		}()
		select {
		case line := <-lineCh:
			if strings.HasPrefix(line, "event: imageUpdated") {
				sawEvent = true
			}
			if strings.HasPrefix(line, ": keep-alive") {
				sawKeepAlive = true
			}
		case <-deadline:
			t.Fatalf("timed out, sawEvent=%v sawKeepAlive=%v", sawEvent, sawKeepAlive)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler did not return after disconnect")
	}
	if hub.Viewers("user-1") != 0 {
		t.Fatalf("subscriber not removed after disconnect")
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

// flushRecorder copies each flushed chunk into a pipe so the test can read
// frames while the handler is still running.
type flushRecorder struct {
	*httptest.ResponseRecorder
	pipe    *io.PipeWriter
	written int
}

func (f *flushRecorder) Flush() {
	body := f.Body.Bytes()
	if len(body) > f.written {
		_, _ = f.pipe.Write(body[f.written:])
		f.written = len(body)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
