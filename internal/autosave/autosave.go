// Package autosave flushes saved plans to disk on a cron schedule.
package autosave

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "weekendplan/internal/log"
)

// DefaultSpec flushes every five minutes.
const DefaultSpec = "*/5 * * * *"

// Flusher writes pending changes. *planstore.Store implements it.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Scheduler runs Flush on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	flusher Flusher
	spec    string
	entry   cron.EntryID
	timeout time.Duration
}

// New parses spec (standard five-field cron or a descriptor such as
// "@every 1m") and prepares a scheduler in loc. It does not start it.
func New(spec string, f Flusher, loc *time.Location) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		flusher: f,
		spec:    spec,
		timeout: 30 * time.Second,
	}
	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("autosave: invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	appLog.Info("autosave: started", "schedule", s.spec, "next", s.Next().Format(time.RFC3339))
}

// Next is the time of the next scheduled flush, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop halts the schedule, waits for a running flush to finish (or ctx to
// end) and then flushes once more.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.flusher.Flush(ctx); err != nil {
		return fmt.Errorf("autosave: final flush: %w", err)
	}
	appLog.Info("autosave: stopped")
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.flusher.Flush(ctx); err != nil {
		appLog.Error("autosave: flush failed", err)
	}
}

// cronLogger routes cron's own logging through the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
