// Package outbox relays committed domain events from the outbox buffer to
// the message broker.
package outbox

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	appoutbox "staybook/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Source is anything the worker can drain flushed event records from; the
// in-memory outbox implements it directly.
type Source interface {
	Drain(ctx context.Context, max int) ([]appoutbox.EventRecord, error)
}

type Worker struct {
	Source      Source
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	BatchSize   int
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Source == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	records, err := w.Source.Drain(ctx, w.batchSize())
	if err != nil {
		return err
	}
	for _, rec := range records {
		headers := map[string]string{"content-type": "application/json"}
		for k, v := range rec.Headers {
			headers[k] = v
		}
		headers["event-name"] = rec.Name
		headers["occurred-at"] = rec.OccurredAt.UTC().Format(time.RFC3339)
		if err := w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, rec.Payload, headers); err != nil {
			if w.Logger != nil {
				w.Logger.Error("outbox publish failed", "event", rec.Name, "id", rec.ID, "error", err)
			}
			continue
		}
	}
	return nil
}

// topicFor maps an event name like "reservation.confirmed" onto the
// aggregate topic "reservation.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 32
	}
	return w.BatchSize
}
