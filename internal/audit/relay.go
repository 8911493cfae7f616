package audit

import (
	"context"
	"log/slog"
	"time"
)

// Outbox is the staging side of the transactional-outbox pattern: Append
// lands events durably, Pending and MarkRelayed drive the relay.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkRelayed(ctx context.Context, ids []string) error
}

// Relay periodically ships staged outbox events to a downstream sink
// (the aggregator's broker). Delivery is at-least-once: a crash between
// Append and MarkRelayed re-ships the batch.
type Relay struct {
	outbox   Outbox
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type RelayOption func(r *Relay)

func WithRelayInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		r.interval = d
	}
}

func WithRelayBatch(n int) RelayOption {
	return func(r *Relay) {
		r.batch = n
	}
}

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(outbox Outbox, sink Sink, opts ...RelayOption) *Relay {
	r := &Relay{
		outbox:   outbox,
		sink:     sink,
		interval: 5 * time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run ships batches until ctx is cancelled. Failures are logged and
// retried on the next tick; the outbox keeps the events.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.shipBatch(ctx); err != nil {
				r.logger.Warn("audit relay batch failed", "error", err)
			}
		}
	}
}

func (r *Relay) shipBatch(ctx context.Context) error {
	events, err := r.outbox.Pending(ctx, r.batch)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	shipped := make([]string, 0, len(events))
	for _, event := range events {
		if err := r.sink.Append(ctx, event); err != nil {
			break
		}
		shipped = append(shipped, event.ID)
	}
	if len(shipped) == 0 {
		return nil
	}
	return r.outbox.MarkRelayed(ctx, shipped)
}
