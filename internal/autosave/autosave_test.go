package autosave

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingFlusher struct {
	calls atomic.Int32
	err   error
	ch    chan struct{}
}

func (c *countingFlusher) Flush(ctx context.Context) error {
	c.calls.Add(1)
	if c.ch != nil {
		select {
		case c.ch <- struct{}{}:
		default:
		}
	}
	return c.err
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("every now and then", &countingFlusher{}, time.UTC); err == nil {
		t.Fatal("Expected error for invalid schedule")
	}
}

func TestNewDefaultsSchedule(t *testing.T) {
	s, err := New("", &countingFlusher{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.spec != DefaultSpec {
		t.Errorf("Expected default spec, got %q", s.spec)
	}
}

func TestSchedulerFlushesAndStops(t *testing.T) {
	f := &countingFlusher{ch: make(chan struct{}, 1)}
	s, err := New("@every 1s", f, time.UTC)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.Start()
	if s.Next().IsZero() {
		t.Error("Expected a next run time after Start")
	}

	select {
	case <-f.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a scheduled flush within 5s")
	}

	before := f.calls.Load()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Expected clean stop, got %v", err)
	}
	if got := f.calls.Load(); got < before+1 {
		t.Errorf("Expected a final flush on stop, got %d calls (was %d)", got, before)
	}
}

func TestStopReportsFlushError(t *testing.T) {
	f := &countingFlusher{err: errors.New("read-only filesystem")}
	s, err := New("@hourly", f, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	if err := s.Stop(context.Background()); !errors.Is(err, f.err) {
		t.Errorf("Expected wrapped flush error, got %v", err)
	}
}

func TestRunSwallowsErrors(t *testing.T) {
	f := &countingFlusher{err: errors.New("boom")}
	s, err := New("@hourly", f, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	s.run()
	if f.calls.Load() != 1 {
		t.Errorf("Expected one flush, got %d", f.calls.Load())
	}
}
