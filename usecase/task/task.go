package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/fastygo/taskboard/domain"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/rules"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
	"github.com/fastygo/taskboard/usecase/auth"
)

const (
	MsgNotAuthenticated = "you must be logged in"
	MsgSaveFailed       = "failed to save task"
)

// SessionProvider resolves the acting user for a call, or nil when nobody is
// logged in.
type SessionProvider interface {
	Current(ctx context.Context) *domain.User
}

// CreateResult is returned by CreateTask. Error holds newline-joined messages.
type CreateResult struct {
	Success bool         `json:"success"`
	Task    *domain.Task `json:"task,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Stats summarizes the tasks visible to the current user.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	DueSoon   int `json:"due_soon"`
}

// Query combines filtering and ordering for list endpoints.
type Query struct {
	Criteria  rules.Criteria
	SortKey   rules.SortKey
	Direction rules.Direction
}

// UseCase applies role-based visibility and permissions on top of the task
// repository. It holds no state between calls.
type UseCase struct {
	tasks   repository.TaskRepository
	session SessionProvider
	events  usecase.Publisher
	audit   appLogger.AuditSink
	logger  *zap.Logger
	now     func() time.Time
	locale  language.Tag
}

func New(tasks repository.TaskRepository, session SessionProvider, events usecase.Publisher, audit appLogger.AuditSink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = appLogger.NopAuditSink{}
	}
	return &UseCase{
		tasks:   tasks,
		session: session,
		events:  events,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
		locale:  language.Spanish,
	}
}

// WithClock replaces the time source that defines "today".
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// WithLocale sets the collation used when sorting by text fields.
func (uc *UseCase) WithLocale(tag language.Tag) *UseCase {
	uc.locale = tag
	return uc
}

// Today is the current calendar day in the clock's location.
func (uc *UseCase) Today() domain.Date {
	return domain.DateOf(uc.now())
}

// VisibleTasks returns every task for administrators, the user's own tasks
// for everyone else and nothing when logged out. Soonest due first.
func (uc *UseCase) VisibleTasks(ctx context.Context) []domain.Task {
	user := uc.session.Current(ctx)
	if user == nil {
		uc.audit.Log(ctx, appLogger.LevelWarning, "no authenticated user")
		return []domain.Task{}
	}

	var (
		tasks []domain.Task
		err   error
	)
	if user.IsAdmin() {
		tasks, err = uc.tasks.List(ctx)
	} else {
		tasks, err = uc.tasks.ListByAssignee(ctx, user.ID)
	}
	if err != nil {
		uc.logger.Error("failed to load tasks", zap.Int("user_id", user.ID), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, "could not load tasks")
		return []domain.Task{}
	}

	if user.IsAdmin() {
		uc.audit.Log(ctx, appLogger.LevelInfo, fmt.Sprintf("admin: loaded %d tasks", len(tasks)))
	} else {
		uc.audit.Log(ctx, appLogger.LevelInfo, fmt.Sprintf("user: loaded %d own tasks", len(tasks)))
	}
	return rules.SortTasks(tasks, rules.SortByDueDate, rules.Asc, uc.locale)
}

// CreateTask validates and stores a task. Normal users always get the task
// assigned to themselves, whatever the draft says.
func (uc *UseCase) CreateTask(ctx context.Context, draft domain.TaskDraft) CreateResult {
	validation := rules.ValidateTask(draft)
	if !validation.Valid {
		uc.audit.Log(ctx, appLogger.LevelError, "validation failed: "+validation.Join(", "))
		return CreateResult{Error: validation.Join("\n")}
	}

	user := uc.session.Current(ctx)
	if user == nil {
		uc.audit.Log(ctx, appLogger.LevelWarning, "task creation without session")
		return CreateResult{Error: MsgNotAuthenticated}
	}

	if !user.IsAdmin() && draft.AssigneeID != user.ID {
		uc.audit.Log(ctx, appLogger.LevelWarning,
			fmt.Sprintf("user %s tried to assign a task to user %d", user.Username, draft.AssigneeID))
		draft.AssigneeID = user.ID
	}

	created, err := uc.tasks.Create(ctx, draft)
	if err != nil {
		uc.logger.Error("failed to create task", zap.String("title", draft.Title), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, "error creating task: "+err.Error())
		return CreateResult{Error: MsgSaveFailed}
	}

	uc.audit.Log(ctx, appLogger.LevelSuccess, "task created: "+created.Title)
	uc.publish(ctx, domain.EventTaskCreated, created.ID, created, user)
	return CreateResult{Success: true, Task: created}
}

// ToggleStatus flips pending and completed. It returns false when the task
// does not exist or the current user may not touch it.
func (uc *UseCase) ToggleStatus(ctx context.Context, id int) bool {
	user, current, ok := uc.authorize(ctx, id, "modify")
	if !ok {
		return false
	}

	next := current.Status.Toggled()
	updated, err := uc.tasks.Update(ctx, id, domain.TaskPatch{Status: &next})
	if err != nil {
		uc.logger.Error("failed to update task", zap.Int("task_id", id), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, fmt.Sprintf("could not update task %d", id))
		return false
	}
	if updated == nil {
		return false
	}

	uc.audit.Log(ctx, appLogger.LevelSuccess, fmt.Sprintf("task %d changed to %s", id, next))
	uc.publish(ctx, domain.EventTaskUpdated, id, updated, user)
	return true
}

// DeleteTask removes a task under the same rules as ToggleStatus.
func (uc *UseCase) DeleteTask(ctx context.Context, id int) bool {
	user, _, ok := uc.authorize(ctx, id, "delete")
	if !ok {
		return false
	}

	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		uc.logger.Error("failed to delete task", zap.Int("task_id", id), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, fmt.Sprintf("could not delete task %d", id))
		return false
	}
	if !deleted {
		return false
	}

	uc.audit.Log(ctx, appLogger.LevelSuccess, fmt.Sprintf("task %d deleted", id))
	uc.publish(ctx, domain.EventTaskDeleted, id, nil, user)
	return true
}

// Statistics counts over VisibleTasks.
func (uc *UseCase) Statistics(ctx context.Context) Stats {
	today := uc.Today()
	tasks := uc.VisibleTasks(ctx)

	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			stats.Pending++
			if rules.IsOverdue(t.DueAt, today) {
				stats.Overdue++
			}
			if rules.IsDueSoon(t, today) {
				stats.DueSoon++
			}
		case domain.StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

// FilterTasks applies criteria to VisibleTasks.
func (uc *UseCase) FilterTasks(ctx context.Context, criteria rules.Criteria) []domain.Task {
	return rules.FilterTasks(uc.VisibleTasks(ctx), criteria, uc.Today())
}

// Search filters and then orders the visible tasks. An empty sort key keeps
// the default due-date order.
func (uc *UseCase) Search(ctx context.Context, q Query) []domain.Task {
	tasks := uc.FilterTasks(ctx, q.Criteria)
	if q.SortKey == "" {
		return tasks
	}
	return rules.SortTasks(tasks, q.SortKey, q.Direction, uc.locale)
}

// authorize loads the task and checks the caller may change it. Missing and
// forbidden are deliberately reported the same way.
func (uc *UseCase) authorize(ctx context.Context, id int, action string) (*domain.User, *domain.Task, bool) {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		uc.logger.Error("failed to load task", zap.Int("task_id", id), zap.Error(err))
		return nil, nil, false
	}
	if current == nil {
		uc.audit.Log(ctx, appLogger.LevelError, fmt.Sprintf("task not found: %d", id))
		return nil, nil, false
	}

	user := uc.session.Current(ctx)
	if !auth.CanModify(user, current) {
		uc.audit.Log(ctx, appLogger.LevelWarning, fmt.Sprintf("no permission to %s task %d", action, id))
		return nil, nil, false
	}
	return user, current, true
}

func (uc *UseCase) publish(ctx context.Context, name domain.EventName, id int, task *domain.Task, actor *domain.User) {
	if uc.events == nil {
		return
	}
	event := domain.TaskEvent{
		Name:       name,
		TaskID:     id,
		Task:       task,
		OccurredAt: uc.now(),
	}
	if actor != nil {
		event.ActorID = actor.ID
	}
	uc.events.Publish(ctx, event)
}
