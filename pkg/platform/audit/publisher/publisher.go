// Package publisher delivers audit events to a Store, either synchronously or
// through a buffered background worker. The domain treats it as a one-way
// sink: emission failures are logged by callers but never roll back state.
package publisher

import (
	"context"
	"sync"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// Publisher writes audit events to a store. In async mode events flow through
// a bounded channel; when the buffer is full events are dropped rather than
// blocking the emitting operation.
type Publisher struct {
	store audit.Store

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*config)

type config struct {
	buffer int
}

// WithAsyncBuffer enables background delivery with the given channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(c *config) {
		c.buffer = size
	}
}

// NewPublisher constructs a Publisher. Without options, Emit appends
// synchronously.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	p := &Publisher{store: store}
	if cfg.buffer > 0 {
		p.inbox = make(chan audit.Event, cfg.buffer)
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit stamps and delivers an event. In async mode a full buffer drops the
// event; audit delivery must never stall a state transition.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		// Buffer full: drop. Store-backed deployments size the buffer for
		// their burst profile.
	}
	return nil
}

// List exposes stored events for operator queries. Domain code never calls
// this; the core writes events and does not read its own history.
func (p *Publisher) List(ctx context.Context, actor id.Address) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actor)
}

// Close drains buffered events and stops the worker. Safe to call more than
// once.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		_ = p.store.Append(context.Background(), event)
	}
}

// Emitter is the one-way sink interface domain services emit into.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Fanout delivers every event to each sink in order. A failing sink does not
// stop delivery to the rest; the first error is returned.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, event audit.Event) error {
	var first error
	for _, sink := range f {
		if err := sink.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
