package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

const defaultActivitySize = 50

// Activity keeps the most recent task events in memory and logs each one.
// It is registered on the event bus with SubscribeAll.
type Activity struct {
	mu     sync.RWMutex
	events []domain.TaskEvent
	size   int
	counts map[domain.EventName]int
	logger *zap.Logger
}

func NewActivity(size int, logger *zap.Logger) *Activity {
	if size <= 0 {
		size = defaultActivitySize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activity{
		size:   size,
		counts: make(map[domain.EventName]int),
		logger: logger.Named("activity"),
	}
}

// Handle records an event. It matches usecase.EventHandler.
func (a *Activity) Handle(_ context.Context, event domain.TaskEvent) error {
	a.mu.Lock()
	a.events = append(a.events, event)
	if len(a.events) > a.size {
		a.events = a.events[len(a.events)-a.size:]
	}
	a.counts[event.Name]++
	a.mu.Unlock()

	a.logger.Info("task event",
		zap.String("event", string(event.Name)),
		zap.Int("task_id", event.TaskID),
		zap.Int("actor_id", event.ActorID))
	return nil
}

// Recent returns the retained events, newest first.
func (a *Activity) Recent() []domain.TaskEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.TaskEvent, 0, len(a.events))
	for i := len(a.events) - 1; i >= 0; i-- {
		out = append(out, a.events[i])
	}
	return out
}

// Counts returns how many events of each name were seen since start.
func (a *Activity) Counts() map[domain.EventName]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[domain.EventName]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}
