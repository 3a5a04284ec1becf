package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/rules"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskView is a task prepared for display: the title is HTML-escaped and the
// due date is rendered relative to today.
type TaskView struct {
	ID         int               `json:"id"`
	Title      string            `json:"title"`
	Status     domain.TaskStatus `json:"status"`
	CreatedAt  domain.Date       `json:"created_at"`
	DueAt      domain.Date       `json:"due_at"`
	AssigneeID int               `json:"assignee_id"`
	DueLabel   string            `json:"due_label"`
	DueClass   string            `json:"due_class,omitempty"`
	Overdue    bool              `json:"overdue"`
}

func NewTaskView(t domain.Task, today domain.Date) TaskView {
	label := rules.FormatDate(t.DueAt, rules.DateRelative, today)
	if t.IsCompleted() {
		label = rules.FormatDate(t.DueAt, rules.DateShort, today)
	}
	return TaskView{
		ID:         t.ID,
		Title:      rules.EscapeHTML(t.Title),
		Status:     t.Status,
		CreatedAt:  t.CreatedAt,
		DueAt:      t.DueAt,
		AssigneeID: t.AssigneeID,
		DueLabel:   label,
		DueClass:   rules.DueClass(t, today),
		Overdue:    t.IsPending() && rules.IsOverdue(t.DueAt, today),
	}
}

func NewTaskViews(tasks []domain.Task, today domain.Date) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskView(t, today))
	}
	return out
}

// UserView is a user without credentials.
type UserView struct {
	ID       int         `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	RoleName string      `json:"role_name"`
}

func NewUserView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		RoleName: u.Role.DisplayName(),
	}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *UserView `json:"user"`
	Message   string    `json:"message"`
}

type SessionResponse struct {
	SessionID  string    `json:"session_id"`
	User       *UserView `json:"user"`
	LoggedInAt time.Time `json:"logged_in_at"`
}
