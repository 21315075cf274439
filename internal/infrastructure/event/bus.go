package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus stopped")

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

type delivery struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers domain events to handlers in-process.
//
// Before Start, Publish runs handlers synchronously on the caller's goroutine.
// After Start, events are queued and delivered by a fixed worker pool, so
// slow side effects (SMS, cache invalidation) never hold up a request.
// Stop drains the queue. Handler errors and panics are logged, never returned.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	workers  int

	mu      sync.RWMutex
	queue   chan delivery
	running bool
	stopped bool
	wg      sync.WaitGroup
}

// Option configures the bus
type Option func(*InMemoryEventBus)

// WithWorkers sets the number of delivery goroutines
func WithWorkers(n int) Option {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.workers = n
		}
	}
}

func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their handlers. The request context is detached
// so that queued deliveries outlive the request that produced them.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		return ErrBusStopped
	}
	for _, e := range events {
		if !b.running {
			b.deliver(ctx, e)
			continue
		}
		select {
		case b.queue <- delivery{ctx: context.WithoutCancel(ctx), event: e}:
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", e.EventType(), ctx.Err())
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the worker pool
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	if b.stopped {
		return ErrBusStopped
	}
	b.queue = make(chan delivery, defaultQueueSize)
	b.running = true
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.work()
	}
	b.logger.Info("event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop refuses new events and waits for queued ones to be delivered, or
// for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil
	}
	b.stopped = true
	wasRunning := b.running
	b.running = false
	if wasRunning {
		close(b.queue)
	}
	b.mu.Unlock()

	if !wasRunning {
		return nil
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work() {
	defer b.wg.Done()
	for d := range b.queue {
		b.deliver(d.ctx, d.event)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, e shared.DomainEvent) {
	for _, h := range b.registry.Handlers(e.EventType()) {
		if err := b.safeHandle(ctx, h, e); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
