package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	JobAuditRecord = "audit_record"
	JobAuditPurge  = "audit_purge"
)

type Service struct {
	queue chan job
	wg    sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) error
}

func New(queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Service{queue: make(chan job, queueSize)}
}

// Start runs the worker until ctx is cancelled. Jobs already queued at
// cancellation are drained on a context that is no longer cancelled.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
}

// Schedule enqueues run every interval until ctx is cancelled.
func (s *Service) Schedule(ctx context.Context, jobType string, interval time.Duration, run func(context.Context) error) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(jobType, run)
			}
		}
	}()
}

// Wait blocks until the worker and schedulers have exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Enqueue submits run without blocking. It reports false when the queue is
// full and the job was dropped.
func (s *Service) Enqueue(jobType string, run func(context.Context) error) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) error) error {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain(context.WithoutCancel(ctx))
			return
		case j := <-s.queue:
			if err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for {
		select {
		case j := <-s.queue:
			if err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed during drain", "jobType", j.Type, "err", err)
			}
		default:
			return
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) error {
	start := time.Now()
	err := j.Run(ctx)
	slog.Debug("job run", "jobType", j.Type, "durationMs", time.Since(start).Milliseconds(), "ok", err == nil)
	return err
}
