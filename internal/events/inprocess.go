package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("events: publisher closed")

// InProcessPublisher hands events to a handler on a background goroutine.
// It is used when no broker is configured.
type InProcessPublisher struct {
	handler Handler
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewInProcessPublisher(handler Handler, log *zap.Logger) *InProcessPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &InProcessPublisher{
		handler: handler,
		log:     log.Named("events"),
		timeout: 30 * time.Second,
	}
}

// Publish returns immediately; handler errors are logged.
func (p *InProcessPublisher) Publish(_ context.Context, event OrderEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// request contexts are cancelled once the response is written
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.handler(ctx, event); err != nil {
			p.log.Error("event handler failed",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Close stops accepting events and waits for in-flight handlers.
func (p *InProcessPublisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
