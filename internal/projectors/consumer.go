package projectors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/metrics"
	"github.com/getsentry/sentry-go"
)

// Projector applies one already-classified event to the projection store.
type Projector interface {
	Domain() events.Domain
	Apply(kind events.Kind, ev chain.Event) error
}

// Consumer drains one domain channel strictly FIFO. Domains run concurrently
// with respect to each other; within a domain, events apply in arrival
// order. A failed event is logged and skipped; it never stops the loop.
type Consumer struct {
	name      string
	router    *events.Router
	projector Projector
	progress  *ProgressTracker
	ch        <-chan chain.Event
}

func NewConsumer(name string, router *events.Router, projector Projector, progress *ProgressTracker, ch <-chan chain.Event) *Consumer {
	return &Consumer{
		name:      name,
		router:    router,
		projector: projector,
		progress:  progress,
		ch:        ch,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	domain := c.projector.Domain()
	slog.Info("consumer started", "worker", c.name)

	for {
		select {
		case <-ctx.Done():
			slog.Info("consumer stopped", "worker", c.name)
			return
		case ev, ok := <-c.ch:
			if !ok {
				slog.Info("consumer channel closed", "worker", c.name)
				return
			}
			c.process(domain, ev)
		}
	}
}

func (c *Consumer) process(domain events.Domain, ev chain.Event) {
	kind, ok := c.router.Classify(ev.EventType)
	if !ok {
		// Unknown event types are routine, not errors.
		slog.Debug("unrecognized event type", "worker", c.name, "event_type", ev.EventType)
		return
	}
	if kind.Domain() != domain {
		return
	}

	start := time.Now()
	err := c.projector.Apply(kind, ev)
	metrics.ProjectionDuration.WithLabelValues(domain.String()).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, events.ErrSkipEvent):
		metrics.EventsSkipped.WithLabelValues(domain.String(), "decode").Inc()
		slog.Warn("undecodable payload, event skipped",
			"worker", c.name, "event_type", ev.EventType, "event_id", ev.EventID)
	case err != nil:
		metrics.EventsFailed.WithLabelValues(domain.String()).Inc()
		sentry.CaptureException(err)
		slog.Error("event projection failed",
			"worker", c.name, "event_type", ev.EventType,
			"event_id", ev.EventID, "error", err)
		return
	default:
		metrics.EventsProcessed.WithLabelValues(domain.String(), kind.String()).Inc()
	}

	if err := c.progress.Update(c.name, ev.TimestampMs); err != nil {
		slog.Error("progress update failed", "worker", c.name, "error", err)
	}
}
