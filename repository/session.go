package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// SessionRepository holds the single active session slot.
type SessionRepository interface {
	Get(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
