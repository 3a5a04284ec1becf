package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// ReportRepository exposes read-only queries derived from the task and user
// collections. Results are recomputed on every call.
type ReportRepository interface {
	TasksOrderedByDueDate(ctx context.Context) ([]domain.Task, error)
	TaskCountsByUserAndStatus(ctx context.Context) ([]domain.StatusCount, error)
	OverdueTasks(ctx context.Context, today domain.Date) ([]domain.Task, error)
}
