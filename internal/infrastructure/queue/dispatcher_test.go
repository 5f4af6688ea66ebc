package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/ports"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []ports.Notification
	err  error
	gate chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, n ports.Notification) error {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

func (m *recordingMailer) snapshot() []ports.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Notification(nil), m.sent...)
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(4, mailer, time.Second, zerolog.Nop())
	d.Start(context.Background())

	subjects := []string{"first", "second", "third", "fourth"}
	for _, s := range subjects {
		if err := d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyBookingClient, To: "ana@example.com", Subject: s}); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	sent := mailer.snapshot()
	if len(sent) != len(subjects) {
		t.Fatalf("expected %d deliveries, got %d", len(subjects), len(sent))
	}
	for i, s := range subjects {
		if sent[i].Subject != s {
			t.Fatalf("delivery %d: expected %q, got %q", i, s, sent[i].Subject)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingMailer{}, time.Second, zerolog.Nop())
	a := d.shardIndex("office@example.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("office@example.com") != a {
			t.Fatal("shard index must be deterministic")
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard index out of range: %d", a)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	mailer := &recordingMailer{gate: make(chan struct{})}
	d := NewDispatcher(1, mailer, time.Second, zerolog.Nop())
	// Workers are not started, so the buffer fills up.
	n := ports.Notification{Kind: ports.NotifyBookingClient, To: "ana@example.com"}
	for i := 0; i < channelBuffer; i++ {
		if err := d.Notify(context.Background(), n); err != nil {
			t.Fatalf("Notify %d failed early: %v", i, err)
		}
	}
	if err := d.Notify(context.Background(), n); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_RejectsAfterShutdown(t *testing.T) {
	d := NewDispatcher(2, &recordingMailer{}, time.Second, zerolog.Nop())
	d.Start(context.Background())
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := d.Notify(context.Background(), ports.Notification{To: "x@example.com"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestDispatcher_MailerFailureDoesNotStopWorker(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("sendgrid: 500")}
	d := NewDispatcher(1, mailer, time.Second, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 3; i++ {
		_ = d.Notify(context.Background(), ports.Notification{To: "a@example.com"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if got := len(mailer.snapshot()); got != 3 {
		t.Fatalf("expected all 3 attempts, got %d", got)
	}
}
