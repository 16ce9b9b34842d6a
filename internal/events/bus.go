// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed  = errors.New("event bus is shutting down")
	ErrBufferFull = errors.New("event channel full")
)

const (
	defaultBufferSize     = 256
	defaultHandlerTimeout = 5 * time.Second
)

// Publisher is the write side of the bus. Swap runs depend on this only.
type Publisher interface {
	Publish(event Event) error
}

type entry struct {
	id      string
	handler Handler
}

// Bus is an in-memory event bus. A single dispatcher delivers events in
// publish order, so a swap's started, leg and finished events reach every
// handler in sequence. Shutdown stops intake and drains what is queued.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]entry
	logger   *zap.Logger

	queue   chan Event
	closing chan struct{}
	done    chan struct{}
	once    sync.Once

	// guards sends against close of closing
	sendMu sync.RWMutex
	closed bool

	handlerTimeout time.Duration
}

// NewBus starts a bus with the given queue size (256 when <= 0).
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	b := &Bus{
		handlers:       make(map[EventType][]entry),
		logger:         logger.Named("events"),
		queue:          make(chan Event, bufferSize),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
		handlerTimeout: defaultHandlerTimeout,
	}
	go b.dispatch()
	return b
}

// Subscribe registers handler for eventType. Handlers of one type are
// called in subscription order.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], entry{id: id, handler: handler})
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))

	return &subscription{id: id, bus: b, typ: eventType}
}

// SubscribeFunc subscribes a plain function.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// Publish queues event without blocking.
func (b *Bus) Publish(event Event) error {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.queue <- event:
		return nil
	default:
		b.logger.Warn("Event channel full, dropping event",
			zap.String("event_type", string(event.Type())))
		return ErrBufferFull
	}
}

// PublishSync delivers event on the caller's goroutine and returns the
// joined handler errors.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]entry(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.handler.Handle(ctx, event); err != nil {
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("handler_id", h.id),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("handlers failed: %w", errors.Join(errs...))
	}
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)

	for {
		select {
		case event := <-b.queue:
			b.deliver(event)
		case <-b.closing:
			for {
				select {
				case event := <-b.queue:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver runs handlers with their own deadline; shutdown does not cancel
// a delivery already in progress.
func (b *Bus) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), b.handlerTimeout)
	defer cancel()

	// errors are logged per handler
	_ = b.PublishSync(ctx, event)
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[eventType]
	for i, h := range list {
		if h.id == id {
			b.handlers[eventType] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}

	b.logger.Debug("Handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown rejects new events and waits until queued ones are delivered
// or ctx expires.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.once.Do(func() {
		b.logger.Info("Shutting down event bus", zap.Int("pending", b.Pending()))
		b.sendMu.Lock()
		b.closed = true
		b.sendMu.Unlock()
		close(b.closing)
	})

	select {
	case <-b.done:
		b.logger.Info("Event bus shutdown complete")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Pending returns the number of queued, not yet dispatched events.
func (b *Bus) Pending() int {
	return len(b.queue)
}

// HandlerCount returns the number of handlers subscribed to eventType.
func (b *Bus) HandlerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
