// Package scheduler runs named jobs at fixed wall-clock times. A
// coarse ticker checks for due jobs; each occurrence fires at most
// once, and a failed or panicking run waits for the next occurrence.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/pkg/config"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

type metricsRecorder interface {
	RecordJobRun(job string, failed bool)
}

type job struct {
	name string
	at   config.ClockTime
	run  JobFunc
}

// Scheduler owns the jobs and the ticking goroutine.
type Scheduler struct {
	tick    time.Duration
	metrics metricsRecorder
	logger  *zap.Logger
	now     func() time.Time

	jobs []job

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastRun map[string]time.Time
}

// New builds an empty scheduler ticking at the given interval.
func New(tick time.Duration, metrics metricsRecorder, logger *zap.Logger) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		tick:    tick,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		lastRun: make(map[string]time.Time),
	}
}

// Add registers a job at a fixed time of day. Must be called before Start.
func (s *Scheduler) Add(name string, at config.ClockTime, run JobFunc) {
	s.jobs = append(s.jobs, job{name: name, at: at, run: run})
}

// Start launches the ticking goroutine. Occurrences that passed before
// startup do not fire. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	now := s.now()
	for _, j := range s.jobs {
		s.lastRun[j.name] = lastOccurrence(now, j.at)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true

	go s.loop(ctx)

	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = fmt.Sprintf("%s@%s", j.name, j.at)
	}
	s.logger.Info("scheduler started", zap.Strings("jobs", names), zap.Duration("tick", s.tick))
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue fires every job whose latest occurrence has not run yet.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now()
	for _, j := range s.jobs {
		occ := lastOccurrence(now, j.at)

		s.mu.Lock()
		ran := !s.lastRun[j.name].Before(occ)
		if !ran {
			s.lastRun[j.name] = occ
		}
		s.mu.Unlock()

		if ran {
			continue
		}
		s.runJob(ctx, j, occ)
	}
}

func (s *Scheduler) runJob(ctx context.Context, j job, occ time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", zap.String("job", j.name), zap.Any("panic", r))
			s.record(j.name, true)
		}
	}()

	start := s.now()
	err := j.run(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", j.name),
			zap.Time("occurrence", occ),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		s.record(j.name, true)
		return
	}

	s.logger.Info("job finished",
		zap.String("job", j.name),
		zap.Time("occurrence", occ),
		zap.Duration("elapsed", elapsed))
	s.record(j.name, false)
}

func (s *Scheduler) record(name string, failed bool) {
	if s.metrics != nil {
		s.metrics.RecordJobRun(name, failed)
	}
}

// lastOccurrence returns the most recent time of day at or before now.
func lastOccurrence(now time.Time, at config.ClockTime) time.Time {
	occ := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if occ.After(now) {
		occ = occ.AddDate(0, 0, -1)
	}
	return occ
}
