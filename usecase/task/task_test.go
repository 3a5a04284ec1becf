package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/rules"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/slotstore"
	"github.com/fastygo/taskboard/usecase"
	"github.com/fastygo/taskboard/usecase/auth"
)

var fixedNow = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

var (
	admin  = &domain.User{ID: 1, Username: "Admin_Jefe", Role: domain.RoleAdmin}
	junior = &domain.User{ID: 2, Username: "Dev_Junior", Role: domain.RoleNormal}
	tester = &domain.User{ID: 3, Username: "QA_Tester", Role: domain.RoleNormal}
)

type staticSession struct {
	user *domain.User
}

func (s *staticSession) Current(context.Context) *domain.User { return s.user }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type recordingSink struct {
	mu     sync.Mutex
	levels []appLogger.Level
	lines  []string
}

func (r *recordingSink) Log(_ context.Context, level appLogger.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.lines = append(r.lines, message)
}

func (r *recordingSink) has(level appLogger.Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.levels {
		if l == level {
			return true
		}
	}
	return false
}

type fixture struct {
	uc      *UseCase
	store   *slotstore.Store
	session *staticSession
	events  *recordingPublisher
	audit   *recordingSink
}

func setup(t *testing.T, user *domain.User) fixture {
	t.Helper()
	store := slotstore.New(storage.NewMemoryBackend(), "gestor_", nil)
	require.NoError(t, store.Initialize(context.Background()))
	return newFixture(store.Tasks(), store, user)
}

func newFixture(tasks repository.TaskRepository, store *slotstore.Store, user *domain.User) fixture {
	f := fixture{
		store:   store,
		session: &staticSession{user: user},
		events:  &recordingPublisher{},
		audit:   &recordingSink{},
	}
	f.uc = New(tasks, f.session, f.events, f.audit, nil).
		WithClock(func() time.Time { return fixedNow }).
		WithLocale(language.Spanish)
	return f
}

func ids(tasks []domain.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestVisibleTasks(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		want []int
	}{
		{"logged out", nil, []int{}},
		{"admin sees everything by due date", admin, []int{1, 4, 2, 3, 5}},
		{"normal user sees own tasks", junior, []int{2, 3}},
		{"other normal user", tester, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.user)
			assert.Equal(t, tt.want, ids(f.uc.VisibleTasks(context.Background())))
		})
	}
}

func TestCreateTask_AssignsToSelfForNormalUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t, junior)

	res := f.uc.CreateTask(ctx, domain.TaskDraft{
		Title:      "Revisar logs",
		CreatedAt:  domain.MustParseDate("2026-02-05"),
		DueAt:      domain.MustParseDate("2026-02-07"),
		AssigneeID: 3,
	})
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Task)
	assert.Equal(t, 6, res.Task.ID)
	assert.Equal(t, 2, res.Task.AssigneeID)
	assert.Equal(t, domain.StatusPending, res.Task.Status)
	assert.True(t, f.audit.has(appLogger.LevelWarning), "override is audited")

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, domain.EventTaskCreated, ev.Name)
	assert.Equal(t, 6, ev.TaskID)
	assert.Equal(t, 2, ev.ActorID)
	assert.Equal(t, fixedNow, ev.OccurredAt)

	assert.Equal(t, []int{2, 6, 3}, ids(f.uc.VisibleTasks(ctx)))
}

func TestCreateTask_AdminMayAssignAnyone(t *testing.T) {
	f := setup(t, admin)

	res := f.uc.CreateTask(context.Background(), domain.TaskDraft{
		Title:      "Migrar base de datos",
		CreatedAt:  domain.MustParseDate("2026-02-05"),
		DueAt:      domain.MustParseDate("2026-03-01"),
		AssigneeID: 3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Task.AssigneeID)
	assert.False(t, f.audit.has(appLogger.LevelWarning))
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	f := setup(t, admin)

	res := f.uc.CreateTask(context.Background(), domain.TaskDraft{Title: "ab", AssigneeID: 1})
	assert.False(t, res.Success)
	assert.Nil(t, res.Task)
	assert.Equal(t,
		"title is too short (minimum 3 characters)\ncreation date is required\ndue date is required",
		res.Error)
	assert.Empty(t, f.events.events)

	tasks, err := f.store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 5)
}

func TestCreateTask_RequiresSession(t *testing.T) {
	f := setup(t, nil)

	res := f.uc.CreateTask(context.Background(), domain.TaskDraft{
		Title:      "Sin sesión",
		CreatedAt:  domain.MustParseDate("2026-02-05"),
		DueAt:      domain.MustParseDate("2026-02-06"),
		AssigneeID: 1,
	})
	assert.False(t, res.Success)
	assert.Equal(t, MsgNotAuthenticated, res.Error)
}

type brokenTasks struct {
	repository.TaskRepository
}

func (brokenTasks) Create(context.Context, domain.TaskDraft) (*domain.Task, error) {
	return nil, domain.WrapError(domain.ErrCodeInternal, "storage: create task", errors.New("quota exceeded"))
}

func TestCreateTask_PersistenceFailure(t *testing.T) {
	store := slotstore.New(storage.NewMemoryBackend(), "gestor_", nil)
	require.NoError(t, store.Initialize(context.Background()))
	f := newFixture(brokenTasks{store.Tasks()}, store, admin)

	res := f.uc.CreateTask(context.Background(), domain.TaskDraft{
		Title:      "No se guarda",
		CreatedAt:  domain.MustParseDate("2026-02-05"),
		DueAt:      domain.MustParseDate("2026-02-06"),
		AssigneeID: 1,
	})
	assert.False(t, res.Success)
	assert.Equal(t, MsgSaveFailed, res.Error)
	assert.Empty(t, f.events.events)
	assert.True(t, f.audit.has(appLogger.LevelError))
}

func TestToggleStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner toggles back and forth", func(t *testing.T) {
		f := setup(t, junior)
		require.True(t, f.uc.ToggleStatus(ctx, 2))

		got, err := f.store.GetTaskByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)

		require.True(t, f.uc.ToggleStatus(ctx, 2))
		got, err = f.store.GetTaskByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)

		require.Len(t, f.events.events, 2)
		assert.Equal(t, domain.EventTaskUpdated, f.events.events[0].Name)
		require.NotNil(t, f.events.events[0].Task)
		assert.Equal(t, domain.StatusCompleted, f.events.events[0].Task.Status)
	})

	t.Run("foreign task is refused and unchanged", func(t *testing.T) {
		f := setup(t, junior)
		assert.False(t, f.uc.ToggleStatus(ctx, 4))

		got, err := f.store.GetTaskByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Empty(t, f.events.events)
		assert.True(t, f.audit.has(appLogger.LevelWarning))
	})

	t.Run("admin toggles any task", func(t *testing.T) {
		f := setup(t, admin)
		assert.True(t, f.uc.ToggleStatus(ctx, 4))
		assert.True(t, f.uc.ToggleStatus(ctx, 1))

		got, err := f.store.GetTaskByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("missing task", func(t *testing.T) {
		f := setup(t, admin)
		assert.False(t, f.uc.ToggleStatus(ctx, 999))
		assert.True(t, f.audit.has(appLogger.LevelError))
	})

	t.Run("logged out", func(t *testing.T) {
		f := setup(t, nil)
		assert.False(t, f.uc.ToggleStatus(ctx, 2))
	})
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("normal user cannot delete foreign task", func(t *testing.T) {
		f := setup(t, tester)
		assert.False(t, f.uc.DeleteTask(ctx, 3))

		got, err := f.store.GetTaskByID(ctx, 3)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("owner deletes", func(t *testing.T) {
		f := setup(t, tester)
		assert.True(t, f.uc.DeleteTask(ctx, 4))
		assert.Empty(t, f.uc.VisibleTasks(ctx))

		require.Len(t, f.events.events, 1)
		assert.Equal(t, domain.EventTaskDeleted, f.events.events[0].Name)
		assert.Equal(t, 4, f.events.events[0].TaskID)
		assert.Nil(t, f.events.events[0].Task)
	})

	t.Run("second delete reports missing", func(t *testing.T) {
		f := setup(t, admin)
		assert.True(t, f.uc.DeleteTask(ctx, 5))
		assert.False(t, f.uc.DeleteTask(ctx, 5))
		assert.Len(t, f.events.events, 1)
	})
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()

	f := setup(t, admin)
	assert.Equal(t, Stats{Total: 5, Pending: 4, Completed: 1, Overdue: 2, DueSoon: 1}, f.uc.Statistics(ctx))

	f = setup(t, junior)
	assert.Equal(t, Stats{Total: 2, Pending: 2, Overdue: 1, DueSoon: 1}, f.uc.Statistics(ctx))

	f = setup(t, nil)
	assert.Equal(t, Stats{}, f.uc.Statistics(ctx))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := setup(t, admin)

	assert.Equal(t, []int{4, 2}, ids(f.uc.FilterTasks(ctx, rules.Criteria{OverdueOnly: true})))
	assert.Equal(t, []int{3}, ids(f.uc.FilterTasks(ctx, rules.Criteria{SearchText: "API"})))

	got := f.uc.Search(ctx, Query{
		Criteria:  rules.Criteria{Status: domain.StatusPending},
		SortKey:   rules.SortByTitle,
		Direction: rules.Asc,
	})
	assert.Equal(t, []int{3, 2, 5, 4}, ids(got))

	got = f.uc.Search(ctx, Query{Criteria: rules.Criteria{AssigneeID: 2}})
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestWithAuthSession(t *testing.T) {
	ctx := context.Background()
	store := slotstore.New(storage.NewMemoryBackend(), "gestor_", nil)
	require.NoError(t, store.Initialize(ctx))

	authUC := auth.New(store.Users(), store.Sessions(), nil, nil)
	bus := usecase.NewEventBus(nil)
	var seen []domain.EventName
	bus.SubscribeAll(func(_ context.Context, ev domain.TaskEvent) error {
		seen = append(seen, ev.Name)
		return nil
	})
	uc := New(store.Tasks(), authUC, bus, nil, nil).WithClock(func() time.Time { return fixedNow })

	assert.Empty(t, uc.VisibleTasks(ctx))

	require.True(t, authUC.Login(ctx, "QA_Tester", "test123").Success)
	assert.Equal(t, []int{4}, ids(uc.VisibleTasks(ctx)))
	assert.True(t, uc.ToggleStatus(ctx, 4))
	assert.False(t, uc.DeleteTask(ctx, 1))

	authUC.Logout(ctx)
	assert.Empty(t, uc.VisibleTasks(ctx))
	assert.Equal(t, []domain.EventName{domain.EventTaskUpdated}, seen)
}

func TestToday(t *testing.T) {
	f := setup(t, nil)
	assert.Equal(t, domain.MustParseDate("2026-02-05"), f.uc.Today())
}
