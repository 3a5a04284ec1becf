package slotstore

import (
	"context"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct{ s *Store }

// Users exposes the store through repository.UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepository{s} }

func (r userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.s.ListUsers(ctx)
}

func (r userRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return r.s.GetUserByID(ctx, id)
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.s.GetUserByUsername(ctx, username)
}

func (r userRepository) Save(ctx context.Context, user *domain.User) error {
	return r.s.SaveUser(ctx, user)
}

func (r userRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.s.DeleteUser(ctx, id)
}

type taskRepository struct{ s *Store }

// Tasks exposes the store through repository.TaskRepository.
func (s *Store) Tasks() repository.TaskRepository { return taskRepository{s} }

func (r taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.s.ListTasks(ctx)
}

func (r taskRepository) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	return r.s.GetTaskByID(ctx, id)
}

func (r taskRepository) ListByAssignee(ctx context.Context, userID int) ([]domain.Task, error) {
	return r.s.ListTasksByAssignee(ctx, userID)
}

func (r taskRepository) Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	return r.s.CreateTask(ctx, draft)
}

func (r taskRepository) Update(ctx context.Context, id int, patch domain.TaskPatch) (*domain.Task, error) {
	return r.s.UpdateTask(ctx, id, patch)
}

func (r taskRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.s.DeleteTask(ctx, id)
}

type sessionRepository struct{ s *Store }

// Sessions exposes the session slot through repository.SessionRepository.
func (s *Store) Sessions() repository.SessionRepository { return sessionRepository{s} }

func (r sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	return r.s.GetSession(ctx)
}

func (r sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	return r.s.SetSession(ctx, session)
}

func (r sessionRepository) Clear(ctx context.Context) error {
	return r.s.ClearSession(ctx)
}

// Reports exposes the derived queries through repository.ReportRepository.
func (s *Store) Reports() repository.ReportRepository { return s }

var _ repository.ReportRepository = (*Store)(nil)
