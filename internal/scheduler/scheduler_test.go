package scheduler

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukman83/promobot/internal/pipeline"
)

type countingRunner struct {
	calls atomic.Int32
	block chan struct{}
}

func (r *countingRunner) Run(ctx context.Context) pipeline.Summary {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
		}
	}
	return pipeline.Summary{RunID: "r"}
}

var quiet = log.New(io.Discard, "", 0)

func TestInvalidSchedule(t *testing.T) {
	if _, err := New("not a schedule", &countingRunner{}, quiet); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestDefaultSchedule(t *testing.T) {
	s, err := New("", &countingRunner{}, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}
}

func TestOverlappingTicksAreSkipped(t *testing.T) {
	r := &countingRunner{block: make(chan struct{})}
	s, err := New("@every 1s", r, quiet)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()

	time.Sleep(3500 * time.Millisecond)
	if got := r.calls.Load(); got != 1 {
		t.Fatalf("expected a single in-flight run, got %d", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
