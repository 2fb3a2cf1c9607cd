package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerExecutesSubmittedTask(t *testing.T) {
	r := NewRunner(8)
	defer r.Close()

	done := make(chan struct{})
	r.Submit("test task", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestRunnerRetriesFailures(t *testing.T) {
	r := NewRunner(8)

	var attempts atomic.Int32
	r.Submit("flaky task", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	r.Close()

	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestRunnerFailureNeverSurfaces(t *testing.T) {
	r := NewRunner(8)

	// A task that always fails must only log; Close still drains cleanly.
	r.Submit("doomed task", func(ctx context.Context) error {
		return errors.New("permanent")
	})

	r.Close()
}

func TestCloseDrainsPendingTasks(t *testing.T) {
	r := NewRunner(8)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		r.Submit("queued task", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	r.Close()

	if got := ran.Load(); got != 5 {
		t.Fatalf("expected 5 tasks to run before close, got %d", got)
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	r := NewRunner(8)
	r.Close()

	// Must not panic or block.
	r.Submit("late task", func(ctx context.Context) error { return nil })
}
