package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher forwards mirror events to a sink, optionally through an async
// buffer so registry mutations never block on the aggregator path.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	inbox  chan Event
	done   chan struct{}
}

type PublisherOption func(p *Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery through
// a bounded channel drained by a Worker. When the buffer is full events
// are dropped with a warning; the in-store history trail is unaffected.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records one event. Timestamps and ids are assigned here so sinks
// receive complete records.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit mirror buffer full, dropping event",
			"action", event.Action, "farm_id", event.FarmID)
		return nil
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logger.Warn("audit mirror append failed", "error", err, "action", event.Action)
		}
	}
}

// Close flushes the async buffer and stops the drain goroutine.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	close(p.inbox)
	<-p.done
}
