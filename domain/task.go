package domain

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggled returns the opposite status.
func (s TaskStatus) Toggled() TaskStatus {
	if s == StatusPending {
		return StatusCompleted
	}
	return StatusPending
}

// Task represents a unit of work assigned to a user.
type Task struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	CreatedAt  Date       `json:"created_at"`
	DueAt      Date       `json:"due_at"`
	AssigneeID int        `json:"assignee_id"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

func (t *Task) IsPending() bool {
	return t != nil && t.Status == StatusPending
}

// TaskDraft carries the caller-supplied fields of a task about to be created.
// Zero values mean the field was not supplied.
type TaskDraft struct {
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status,omitempty"`
	CreatedAt  Date       `json:"created_at"`
	DueAt      Date       `json:"due_at"`
	AssigneeID int        `json:"assignee_id"`
}

// TaskPatch lists the fields an update may overwrite. Nil fields are left alone.
type TaskPatch struct {
	Title      *string
	Status     *TaskStatus
	CreatedAt  *Date
	DueAt      *Date
	AssigneeID *int
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	if p.DueAt != nil {
		t.DueAt = *p.DueAt
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
}

// StatusCount is one row of the per-user, per-status task tally.
type StatusCount struct {
	Username string     `json:"username"`
	Status   TaskStatus `json:"status"`
	Total    int        `json:"total"`
}
