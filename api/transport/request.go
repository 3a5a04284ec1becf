package transport

import (
	"strings"

	"github.com/fastygo/taskboard/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskRequest is the body of POST /api/v1/tasks. Dates use YYYY-MM-DD.
type TaskRequest struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	DueAt      string `json:"due_at"`
	AssigneeID int    `json:"assignee_id"`
}

// Draft converts the request into a task draft. A missing creation date
// means today.
func (r TaskRequest) Draft(today domain.Date) (domain.TaskDraft, error) {
	created, err := domain.ParseDate(strings.TrimSpace(r.CreatedAt))
	if err != nil {
		return domain.TaskDraft{}, domain.WrapError(domain.ErrCodeInvalid, "invalid created_at", err)
	}
	if created.IsZero() {
		created = today
	}
	due, err := domain.ParseDate(strings.TrimSpace(r.DueAt))
	if err != nil {
		return domain.TaskDraft{}, domain.WrapError(domain.ErrCodeInvalid, "invalid due_at", err)
	}
	return domain.TaskDraft{
		Title:      r.Title,
		Status:     domain.TaskStatus(strings.TrimSpace(r.Status)),
		CreatedAt:  created,
		DueAt:      due,
		AssigneeID: r.AssigneeID,
	}, nil
}
