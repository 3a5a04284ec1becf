package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// EventHandler reacts to a task event. Errors are logged, never returned to
// the publisher.
type EventHandler func(ctx context.Context, event domain.TaskEvent) error

// Publisher is what use cases need to announce persisted mutations.
type Publisher interface {
	Publish(ctx context.Context, event domain.TaskEvent)
}

// EventBus delivers events synchronously, in subscription order, to the
// handlers registered for the event name.
type EventBus struct {
	handlers map[domain.EventName][]EventHandler
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		handlers: make(map[domain.EventName][]EventHandler),
		logger:   logger,
	}
}

func (b *EventBus) Subscribe(name domain.EventName, handler EventHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// SubscribeAll registers handler for every task event.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, name := range []domain.EventName{domain.EventTaskCreated, domain.EventTaskUpdated, domain.EventTaskDeleted} {
		b.Subscribe(name, handler)
	}
}

func (b *EventBus) Publish(ctx context.Context, event domain.TaskEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.handlers[event.Name]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.deliver(ctx, h, event); err != nil {
			b.logger.Warn("event handler failed",
				zap.String("event", string(event.Name)),
				zap.Int("task_id", event.TaskID),
				zap.Error(err))
		}
	}
}

func (b *EventBus) deliver(ctx context.Context, h EventHandler, event domain.TaskEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}

var _ Publisher = (*EventBus)(nil)
