// Package rules holds the pure business helpers shared by the use cases:
// date arithmetic, validation, formatting, filtering and sorting.
//
// Nothing here reads the clock. Callers pass "today" explicitly.
package rules

import (
	"fmt"

	"github.com/fastygo/taskboard/domain"
)

// DateMode selects a FormatDate rendering.
type DateMode string

const (
	DateShort    DateMode = "short"
	DateLong     DateMode = "long"
	DateRelative DateMode = "relative"
)

const (
	shortLayout = "02/01/2006"
	longLayout  = "2 January 2006"
)

// IsDateValid reports whether dueAt is on or after createdAt.
func IsDateValid(createdAt, dueAt domain.Date) bool {
	return !dueAt.Before(createdAt)
}

// IsOverdue reports whether date falls on a calendar day before today.
func IsOverdue(date, today domain.Date) bool {
	return date.Before(today)
}

// DaysRemaining is the number of days from today until date; negative once
// date has passed, zero on the day itself.
func DaysRemaining(date, today domain.Date) int {
	return date.DaysSince(today)
}

// FormatDate renders date for display. Unknown modes fall back to short.
func FormatDate(date domain.Date, mode DateMode, today domain.Date) string {
	if date.IsZero() {
		return ""
	}
	switch mode {
	case DateLong:
		return date.Time().Format(longLayout)
	case DateRelative:
		return relative(date, today)
	default:
		return date.Time().Format(shortLayout)
	}
}

func relative(date, today domain.Date) string {
	days := DaysRemaining(date, today)
	switch {
	case days < 0:
		n := -days
		if n == 1 {
			return "Overdue by 1 day"
		}
		return fmt.Sprintf("Overdue by %d days", n)
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	case days <= 7:
		return fmt.Sprintf("Due in %d days", days)
	default:
		return date.Time().Format(shortLayout)
	}
}

// DueClass classifies a task's urgency for presentation: "overdue",
// "urgent" (two days or less), "upcoming" (within a week) or "".
func DueClass(task domain.Task, today domain.Date) string {
	if task.Status == domain.StatusCompleted {
		return ""
	}
	days := DaysRemaining(task.DueAt, today)
	switch {
	case days < 0:
		return "overdue"
	case days <= 2:
		return "urgent"
	case days <= 7:
		return "upcoming"
	default:
		return ""
	}
}

// IsDueSoon reports a pending task due within the next seven days, today included.
func IsDueSoon(task domain.Task, today domain.Date) bool {
	if task.Status != domain.StatusPending {
		return false
	}
	days := DaysRemaining(task.DueAt, today)
	return days >= 0 && days <= 7
}
