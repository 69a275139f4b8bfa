package audit

import (
	"context"
	"time"
)

// Enqueuer runs work off the request path.
type Enqueuer interface {
	Enqueue(jobType string, run func(context.Context) error) bool
}

// AsyncRecorder hands events to a background queue so request handlers never
// wait on the audit store.
type AsyncRecorder struct {
	next    Recorder
	queue   Enqueuer
	jobType string
	timeout time.Duration
}

func NewAsync(next Recorder, queue Enqueuer, jobType string) *AsyncRecorder {
	return &AsyncRecorder{next: next, queue: queue, jobType: jobType, timeout: 5 * time.Second}
}

// Record queues the event. Request metadata is captured here because the
// worker runs on its own context. A full queue drops the event and reports
// ErrQueueFull.
func (a *AsyncRecorder) Record(ctx context.Context, evt Event, before, after any) error {
	evt = stamp(ctx, evt)
	queued := a.queue.Enqueue(a.jobType, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return a.next.Record(ctx, evt, before, after)
	})
	if !queued {
		return ErrQueueFull
	}
	return nil
}
