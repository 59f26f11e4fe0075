package memory

import (
	"context"
	"sync"

	appoutbox "staybook/internal/app/outbox"
)

// Outbox buffers event records until the command middleware flushes them,
// at which point they become visible to the publishing worker via Drain.
type Outbox struct {
	mu      sync.Mutex
	pending []appoutbox.EventRecord
	ready   []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ready = append(o.ready, o.pending...)
	o.pending = nil
	return nil
}

// Drain removes and returns up to max released records.
func (o *Outbox) Drain(ctx context.Context, max int) ([]appoutbox.EventRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if max <= 0 || max > len(o.ready) {
		max = len(o.ready)
	}
	out := make([]appoutbox.EventRecord, max)
	copy(out, o.ready[:max])
	o.ready = o.ready[max:]
	return out, nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
