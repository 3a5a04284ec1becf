// Package slotstore simulates a two-table relational database (users, tasks)
// plus a session slot and an id counter on top of a key/value storage.Backend.
// Every mutation rewrites the whole affected collection before returning.
package slotstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
)

// Slot names, joined to the configured prefix.
const (
	SlotUsers   = "usuarios"
	SlotTasks   = "tareas"
	SlotSession = "sesion"
	SlotCounter = "contador_tareas"
)

// Snapshot is the full exported state of a store.
type Snapshot struct {
	Users   []domain.User   `json:"users"`
	Tasks   []domain.Task   `json:"tasks"`
	Session *domain.Session `json:"session"`
}

type keys struct {
	users, tasks, session, counter string
}

// Store owns the user and task collections, the session slot and the task id counter.
type Store struct {
	backend storage.Backend
	keys    keys
	logger  *zap.Logger
	mu      sync.RWMutex
}

// New creates a store over backend. Slot keys are prefix + slot name.
func New(backend storage.Backend, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		keys: keys{
			users:   prefix + SlotUsers,
			tasks:   prefix + SlotTasks,
			session: prefix + SlotSession,
			counter: prefix + SlotCounter,
		},
		logger: logger,
	}
}

// Initialize seeds the fixture users and tasks when the users slot is absent.
// It does nothing when data is already present.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialize(ctx)
}

func (s *Store) initialize(ctx context.Context) error {
	_, err := s.backend.Get(ctx, s.keys.users)
	if err == nil {
		s.logger.Debug("store already initialized")
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return persistenceError("read users", err)
	}

	users, err := json.Marshal(seedUsers)
	if err != nil {
		return persistenceError("encode users", err)
	}
	tasks, err := json.Marshal(seedTasks)
	if err != nil {
		return persistenceError("encode tasks", err)
	}

	if err := s.backend.PutAll(ctx,
		storage.Entry{Key: s.keys.users, Value: users},
		storage.Entry{Key: s.keys.tasks, Value: tasks},
		storage.Entry{Key: s.keys.counter, Value: []byte(strconv.Itoa(seedCounter))},
	); err != nil {
		return persistenceError("seed store", err)
	}

	s.logger.Info("store seeded", zap.Int("users", len(seedUsers)), zap.Int("tasks", len(seedTasks)))
	return nil
}

// Reset removes every slot, the session included, and seeds again.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.keys.users, s.keys.tasks, s.keys.session, s.keys.counter); err != nil {
		return persistenceError("reset store", err)
	}
	s.logger.Info("store reset")
	return s.initialize(ctx)
}

// Export returns the current users, tasks and session.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.readTasks(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.readSession(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionCorrupt) {
		return nil, err
	}
	return &Snapshot{Users: users, Tasks: tasks, Session: session}, nil
}

// ListUsers returns every stored user in slot order.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readUsers(ctx)
}

// GetUserByID returns nil, nil when no user has the id.
func (s *Store) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetUserByUsername matches the username exactly, case included.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// SaveUser inserts the user or replaces the record with the same id.
func (s *Store) SaveUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID <= 0 {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(users, func(u domain.User) bool { return u.ID == user.ID })
	if idx >= 0 {
		users[idx] = *user
	} else {
		users = append(users, *user)
	}
	return s.writeUsers(ctx, users)
}

// DeleteUser removes the user record only. Tasks assigned to it are kept.
func (s *Store) DeleteUser(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return false, err
	}
	remaining := slices.DeleteFunc(slices.Clone(users), func(u domain.User) bool { return u.ID == id })
	if len(remaining) == len(users) {
		return false, nil
	}
	if err := s.writeUsers(ctx, remaining); err != nil {
		return false, err
	}
	s.logger.Info("user deleted", zap.Int("user_id", id))
	return true, nil
}

// ListTasks returns every stored task in slot order.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readTasks(ctx)
}

// GetTaskByID returns nil, nil when no task has the id.
func (s *Store) GetTaskByID(ctx context.Context, id int) (*domain.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// ListTasksByAssignee keeps slot order.
func (s *Store) ListTasksByAssignee(ctx context.Context, userID int) ([]domain.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.AssigneeID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTask assigns the next id and persists the task together with the
// counter. The draft is stored as given apart from the status default.
func (s *Store) CreateTask(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTasks(ctx)
	if err != nil {
		return nil, err
	}
	counter, err := s.readCounter(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		counter = max(counter, t.ID)
	}
	counter++

	task := domain.Task{
		ID:         counter,
		Title:      draft.Title,
		Status:     draft.Status,
		CreatedAt:  draft.CreatedAt,
		DueAt:      draft.DueAt,
		AssigneeID: draft.AssigneeID,
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	tasks = append(tasks, task)

	payload, err := json.Marshal(tasks)
	if err != nil {
		return nil, persistenceError("encode tasks", err)
	}
	if err := s.backend.PutAll(ctx,
		storage.Entry{Key: s.keys.tasks, Value: payload},
		storage.Entry{Key: s.keys.counter, Value: []byte(strconv.Itoa(counter))},
	); err != nil {
		return nil, persistenceError("write tasks", err)
	}

	s.logger.Debug("task created", zap.Int("task_id", task.ID))
	return &task, nil
}

// UpdateTask merges patch into the stored task. A nil task with a nil error
// means the id does not exist.
func (s *Store) UpdateTask(ctx context.Context, id int, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTasks(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
	if idx < 0 {
		s.logger.Debug("task not found for update", zap.Int("task_id", id))
		return nil, nil
	}

	patch.Apply(&tasks[idx])
	if err := s.writeTasks(ctx, tasks); err != nil {
		return nil, err
	}
	updated := tasks[idx]
	return &updated, nil
}

// DeleteTask reports false when no task has the id.
func (s *Store) DeleteTask(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTasks(ctx)
	if err != nil {
		return false, err
	}
	remaining := slices.DeleteFunc(slices.Clone(tasks), func(t domain.Task) bool { return t.ID == id })
	if len(remaining) == len(tasks) {
		s.logger.Debug("task not found for delete", zap.Int("task_id", id))
		return false, nil
	}
	if err := s.writeTasks(ctx, remaining); err != nil {
		return false, err
	}
	return true, nil
}

// TasksOrderedByDueDate is SELECT * FROM tasks ORDER BY due_at ASC.
func (s *Store) TasksOrderedByDueDate(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b domain.Task) int { return a.DueAt.Compare(b.DueAt) })
	return tasks, nil
}

// TaskCountsByUserAndStatus groups tasks by (username, status). Tasks whose
// assignee no longer exists are left out.
func (s *Store) TaskCountsByUserAndStatus(ctx context.Context) ([]domain.StatusCount, error) {
	s.mu.RLock()
	users, err := s.readUsers(ctx)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	tasks, err := s.readTasks(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	type groupKey struct {
		username string
		status   domain.TaskStatus
	}
	index := make(map[groupKey]int)
	var out []domain.StatusCount
	for _, t := range tasks {
		name, ok := names[t.AssigneeID]
		if !ok {
			continue
		}
		k := groupKey{username: name, status: t.Status}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, domain.StatusCount{Username: name, Status: t.Status})
		}
		out[i].Total++
	}

	slices.SortStableFunc(out, func(a, b domain.StatusCount) int {
		switch {
		case a.Username < b.Username:
			return -1
		case a.Username > b.Username:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// OverdueTasks returns pending tasks due strictly before today, soonest first.
func (s *Store) OverdueTasks(ctx context.Context, today domain.Date) ([]domain.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0)
	for _, t := range tasks {
		if t.Status == domain.StatusPending && t.DueAt.Before(today) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int { return a.DueAt.Compare(b.DueAt) })
	return out, nil
}

// GetSession returns nil when no session is stored. A slot that cannot be
// decoded yields an error wrapping domain.ErrSessionCorrupt.
func (s *Store) GetSession(ctx context.Context) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readSession(ctx)
}

// SetSession replaces the single stored session.
func (s *Store) SetSession(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return persistenceError("encode session", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Put(ctx, s.backend, s.keys.session, payload); err != nil {
		return persistenceError("write session", err)
	}
	return nil
}

// ClearSession is idempotent.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.keys.session); err != nil {
		return persistenceError("clear session", err)
	}
	return nil
}

func (s *Store) readUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.readJSON(ctx, s.keys.users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) writeUsers(ctx context.Context, users []domain.User) error {
	return s.writeJSON(ctx, s.keys.users, users)
}

func (s *Store) readTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := s.readJSON(ctx, s.keys.tasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) writeTasks(ctx context.Context, tasks []domain.Task) error {
	return s.writeJSON(ctx, s.keys.tasks, tasks)
}

// readCounter treats a missing or unparsable counter as zero.
func (s *Store) readCounter(ctx context.Context) (int, error) {
	raw, err := s.backend.Get(ctx, s.keys.counter)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, persistenceError("read counter", err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		s.logger.Warn("task counter unreadable, restarting from existing ids", zap.String("value", string(raw)))
		return 0, nil
	}
	return n, nil
}

func (s *Store) readSession(ctx context.Context) (*domain.Session, error) {
	raw, err := s.backend.Get(ctx, s.keys.session)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("read session", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if !session.Valid() {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrSessionCorrupt)
	}
	return &session, nil
}

// readJSON leaves dst untouched when the slot is absent.
func (s *Store) readJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return persistenceError("read "+key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return persistenceError("decode "+key, err)
	}
	return nil
}

func (s *Store) writeJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return persistenceError("encode "+key, err)
	}
	if err := storage.Put(ctx, s.backend, key, payload); err != nil {
		return persistenceError("write "+key, err)
	}
	return nil
}

func persistenceError(op string, err error) error {
	return domain.WrapError(domain.ErrCodeInternal, "storage: "+op, err)
}
