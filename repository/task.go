package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository is plain persistence: it performs no validation and no
// permission checks.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	GetByID(ctx context.Context, id int) (*domain.Task, error)
	ListByAssignee(ctx context.Context, userID int) ([]domain.Task, error)
	Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error)
	Update(ctx context.Context, id int, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int) (bool, error)
}
