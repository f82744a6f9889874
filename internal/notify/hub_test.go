package notify

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesAllViewersOfRecipient(t *testing.T) {
	hub := NewHub()
	first := hub.Subscribe("user-1")
	second := hub.Subscribe("user-1")
	other := hub.Subscribe("user-2")

	hub.Publish("user-1", Event{Name: EventImageUpdated, JobID: "job-1", OutputKey: "generated/images/job-1/output.png"})

	for _, sub := range []*Subscriber{first, second} {
		select {
		case ev := <-sub.C:
			if ev.JobID != "job-1" || ev.Name != EventImageUpdated {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			t.Fatalf("subscriber did not receive event")
		}
	}
	select {
	case ev := <-other.C:
		t.Fatalf("other recipient received %+v", ev)
	default:
	}
}

func TestPublishToAbsentRecipientIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Publish("nobody", Event{Name: EventImageDeleted, JobID: "job-9"})
}

func TestCloseRemovesSubscriberAndIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	if got := hub.Viewers("user-1"); got != 1 {
		t.Fatalf("viewers = %d", got)
	}
	sub.Close()
	sub.Close()
	if got := hub.Viewers("user-1"); got != 0 {
		t.Fatalf("viewers after close = %d", got)
	}
	hub.Publish("user-1", Event{Name: EventImageUpdated, JobID: "job-1"})
	select {
	case ev := <-sub.C:
		t.Fatalf("closed subscriber received %+v", ev)
	default:
	}
}

func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(sub.C)*3; i++ {
			hub.Publish("user-1", Event{Name: EventImageUpdated, JobID: "flood"})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a saturated subscriber")
	}
}

func TestConcurrentSubscribePublishClose(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sub := hub.Subscribe("user-1")
				hub.Publish("user-1", Event{Name: EventImageUpdated, JobID: "job"})
				sub.Close()
			}
		}()
	}
	wg.Wait()
	if got := hub.Viewers("user-1"); got != 0 {
		t.Fatalf("viewers after churn = %d", got)
	}
}
