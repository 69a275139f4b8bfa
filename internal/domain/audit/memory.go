package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLog keeps events in process. It backs tests and runs without a
// database.
type MemoryLog struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Record(ctx context.Context, evt Event, before, after any) error {
	beforeJSON, err := marshalOptional(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOptional(after)
	if err != nil {
		return err
	}
	evt = stamp(ctx, evt)
	evt.ID = uuid.NewString()
	evt.CreatedAt = time.Now().UTC()
	evt.Before = beforeJSON
	evt.After = afterJSON

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

// Events returns recorded events, oldest first.
func (m *MemoryLog) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MemoryLog) Count(ctx context.Context, filter Filter) (int, error) {
	return len(m.filtered(filter)), nil
}

func (m *MemoryLog) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	matched := m.filtered(filter)
	out := []Event{}
	for i := len(matched) - 1 - offset; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		evt := matched[i]
		if !includeDetails {
			evt.Before, evt.After = nil, nil
		}
		out = append(out, evt)
	}
	return out, nil
}

func (m *MemoryLog) filtered(filter Filter) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, 0, len(m.events))
	for _, evt := range m.events {
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		if filter.ActorUser != "" && evt.ActorID != filter.ActorUser {
			continue
		}
		out = append(out, evt)
	}
	return out
}
