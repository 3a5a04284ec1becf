package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	"github.com/fastygo/taskboard/repository/slotstore"
)

type staticSession struct {
	user *domain.User
}

func (s staticSession) Current(context.Context) *domain.User { return s.user }

func setup(t *testing.T, user *domain.User) *UseCase {
	t.Helper()
	store := slotstore.New(storage.NewMemoryBackend(), "gestor_", nil)
	require.NoError(t, store.Initialize(context.Background()))
	return New(store.Reports(), staticSession{user: user}, nil, nil).
		WithClock(func() time.Time { return time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC) })
}

func taskIDs(tasks []domain.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestReports_Admin(t *testing.T) {
	ctx := context.Background()
	uc := setup(t, &domain.User{ID: 1, Username: "Admin_Jefe", Role: domain.RoleAdmin})

	byDue, err := uc.ByDueDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 2, 3, 5}, taskIDs(byDue))

	counts, err := uc.CountsByUserAndStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusCount{
		{Username: "Admin_Jefe", Status: domain.StatusCompleted, Total: 1},
		{Username: "Admin_Jefe", Status: domain.StatusPending, Total: 1},
		{Username: "Dev_Junior", Status: domain.StatusPending, Total: 2},
		{Username: "QA_Tester", Status: domain.StatusPending, Total: 1},
	}, counts)

	overdue, err := uc.Overdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, taskIDs(overdue))
}

func TestReports_Access(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		code domain.ErrorCode
	}{
		{"logged out", nil, domain.ErrCodeUnauthorized},
		{"normal user", &domain.User{ID: 2, Username: "Dev_Junior", Role: domain.RoleNormal}, domain.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			uc := setup(t, tt.user)

			_, err := uc.ByDueDate(ctx)
			assert.True(t, domain.IsDomainError(err, tt.code))
			_, err = uc.CountsByUserAndStatus(ctx)
			assert.True(t, domain.IsDomainError(err, tt.code))
			_, err = uc.Overdue(ctx)
			assert.True(t, domain.IsDomainError(err, tt.code))
		})
	}
}
