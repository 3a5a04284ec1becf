package rules

import (
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/fastygo/taskboard/domain"
)

const (
	TitleMinLength = 3
	TitleMaxLength = 100
)

// Validation collects every failed check; it never stops at the first one.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (v *Validation) add(msg string) {
	v.Errors = append(v.Errors, msg)
}

func (v *Validation) finish() Validation {
	v.Valid = len(v.Errors) == 0
	return *v
}

// Join returns the messages separated by sep.
func (v Validation) Join(sep string) string {
	return strings.Join(v.Errors, sep)
}

// Err returns nil for a valid result, otherwise an INVALID domain error whose
// cause combines one error per message.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	var combined error
	for _, msg := range v.Errors {
		combined = multierr.Append(combined, errors.New(msg))
	}
	return domain.WrapError(domain.ErrCodeInvalid, "validation failed", combined)
}

// ValidateTask checks a draft before it is stored.
func ValidateTask(draft domain.TaskDraft) Validation {
	var v Validation

	title := strings.TrimSpace(draft.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		v.add("title is required")
	case n < TitleMinLength:
		v.add("title is too short (minimum 3 characters)")
	case n > TitleMaxLength:
		v.add("title is too long (maximum 100 characters)")
	}

	if draft.Status != "" && !draft.Status.Valid() {
		v.add("invalid status (must be pending or completed)")
	}

	if draft.CreatedAt.IsZero() {
		v.add("creation date is required")
	}
	if draft.DueAt.IsZero() {
		v.add("due date is required")
	}
	if !draft.CreatedAt.IsZero() && !draft.DueAt.IsZero() && !IsDateValid(draft.CreatedAt, draft.DueAt) {
		v.add("due date cannot be before creation date")
	}

	if draft.AssigneeID == 0 {
		v.add("task must be assigned to a user")
	}

	return v.finish()
}

// ValidateLogin requires both credentials to be non-blank.
func ValidateLogin(username, password string) Validation {
	var v Validation
	if strings.TrimSpace(username) == "" {
		v.add("username is required")
	}
	if strings.TrimSpace(password) == "" {
		v.add("password is required")
	}
	return v.finish()
}
