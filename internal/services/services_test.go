package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	"github.com/fastygo/taskboard/repository/slotstore"
	"github.com/fastygo/taskboard/usecase"
)

// The redis driver linked in through storage keeps a process-wide clock
// goroutine alive.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.startGlobalTimeCache.func1"),
	)
}

var fixedNow = time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *slotstore.Store {
	t.Helper()
	store := slotstore.New(storage.NewMemoryBackend(), "gestor_", nil)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func TestOverdueReporter_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reporter, err := NewOverdueReporter(seededStore(t).Reports(), zap.New(core), ReporterConfig{Interval: time.Hour})
	require.NoError(t, err)
	reporter.WithClock(func() time.Time { return fixedNow })

	assert.Nil(t, reporter.Last())

	summary, err := reporter.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, []int{4, 2}, summary.TaskIDs)
	require.Len(t, summary.Tasks, 2)
	assert.Equal(t, 4, summary.Tasks[0].ID)
	assert.Equal(t, domain.StatusPending, summary.Tasks[1].Status)
	assert.Equal(t, domain.MustParseDate("2026-02-05"), summary.Date)
	assert.Equal(t, summary, reporter.Last())

	overdue := logs.FilterMessage("task overdue").All()
	require.Len(t, overdue, 2)
	assert.Equal(t, int64(11), overdue[0].ContextMap()["days_late"])
	assert.Equal(t, 1, logs.FilterMessage("overdue report").Len())
}

type brokenReports struct{}

func (brokenReports) TasksOrderedByDueDate(context.Context) ([]domain.Task, error) { return nil, nil }
func (brokenReports) TaskCountsByUserAndStatus(context.Context) ([]domain.StatusCount, error) {
	return nil, nil
}
func (brokenReports) OverdueTasks(context.Context, domain.Date) ([]domain.Task, error) {
	return nil, errors.New("backend offline")
}

func TestOverdueReporter_RunError(t *testing.T) {
	reporter, err := NewOverdueReporter(brokenReports{}, nil, ReporterConfig{})
	require.NoError(t, err)

	_, err = reporter.Run(context.Background())
	assert.EqualError(t, err, "backend offline")
	assert.Nil(t, reporter.Last())
}

func TestOverdueReporter_StartStop(t *testing.T) {
	reporter, err := NewOverdueReporter(seededStore(t).Reports(), nil, ReporterConfig{Interval: time.Hour})
	require.NoError(t, err)

	reporter.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reporter.Stop(ctx)
}

func TestActivity(t *testing.T) {
	activity := NewActivity(2, nil)
	bus := usecase.NewEventBus(nil)
	bus.SubscribeAll(activity.Handle)

	ctx := context.Background()
	bus.Publish(ctx, domain.TaskEvent{Name: domain.EventTaskCreated, TaskID: 6})
	bus.Publish(ctx, domain.TaskEvent{Name: domain.EventTaskUpdated, TaskID: 6})
	bus.Publish(ctx, domain.TaskEvent{Name: domain.EventTaskDeleted, TaskID: 6})

	recent := activity.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, domain.EventTaskDeleted, recent[0].Name)
	assert.Equal(t, domain.EventTaskUpdated, recent[1].Name)

	assert.Equal(t, map[domain.EventName]int{
		domain.EventTaskCreated: 1,
		domain.EventTaskUpdated: 1,
		domain.EventTaskDeleted: 1,
	}, activity.Counts())
}
