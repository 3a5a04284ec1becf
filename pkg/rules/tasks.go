package rules

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fastygo/taskboard/domain"
)

// SortKey names the field SortTasks orders by.
type SortKey string

const (
	SortByDueDate SortKey = "dueDate"
	SortByTitle   SortKey = "title"
	SortByStatus  SortKey = "status"
)

// Direction is asc or desc.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Criteria are independent optional predicates; zero fields impose nothing.
type Criteria struct {
	Status      domain.TaskStatus `json:"status,omitempty"`
	AssigneeID  int               `json:"assignee_id,omitempty"`
	OverdueOnly bool              `json:"overdue_only,omitempty"`
	SearchText  string            `json:"search_text,omitempty"`
}

// FilterTasks returns a new slice with the tasks matching every supplied predicate.
func FilterTasks(tasks []domain.Task, c Criteria, today domain.Date) []domain.Task {
	search := strings.ToLower(c.SearchText)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		if c.AssigneeID != 0 && t.AssigneeID != c.AssigneeID {
			continue
		}
		if c.OverdueOnly && !(t.Status == domain.StatusPending && IsOverdue(t.DueAt, today)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTasks returns a stably sorted copy. Text keys compare with the
// collation rules of locale; an unknown key leaves the order unchanged.
func SortTasks(tasks []domain.Task, key SortKey, dir Direction, locale language.Tag) []domain.Task {
	out := slices.Clone(tasks)
	col := collate.New(locale)

	slices.SortStableFunc(out, func(a, b domain.Task) int {
		var c int
		switch key {
		case SortByDueDate:
			c = a.DueAt.Compare(b.DueAt)
		case SortByTitle:
			c = col.CompareString(a.Title, b.Title)
		case SortByStatus:
			c = col.CompareString(string(a.Status), string(b.Status))
		}
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}
