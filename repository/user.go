package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// UserRepository looks users up by id or name. Lookups that find nothing
// return a nil user and a nil error.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int) (bool, error)
}
