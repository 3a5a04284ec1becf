package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// SessionProvider resolves the acting user, or nil when logged out.
type SessionProvider interface {
	Current(ctx context.Context) *domain.User
}

// UseCase serves the administrator reports.
type UseCase struct {
	reports repository.ReportRepository
	session SessionProvider
	audit   appLogger.AuditSink
	logger  *zap.Logger
	now     func() time.Time
}

func New(reports repository.ReportRepository, session SessionProvider, audit appLogger.AuditSink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = appLogger.NopAuditSink{}
	}
	return &UseCase{
		reports: reports,
		session: session,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// ByDueDate lists every task, soonest due first.
func (uc *UseCase) ByDueDate(ctx context.Context) ([]domain.Task, error) {
	if err := uc.requireAdmin(ctx, "by-due-date"); err != nil {
		return nil, err
	}
	return uc.reports.TasksOrderedByDueDate(ctx)
}

// CountsByUserAndStatus tallies tasks per assignee name and status.
func (uc *UseCase) CountsByUserAndStatus(ctx context.Context) ([]domain.StatusCount, error) {
	if err := uc.requireAdmin(ctx, "counts"); err != nil {
		return nil, err
	}
	return uc.reports.TaskCountsByUserAndStatus(ctx)
}

// Overdue lists pending tasks whose due date is before today.
func (uc *UseCase) Overdue(ctx context.Context) ([]domain.Task, error) {
	if err := uc.requireAdmin(ctx, "overdue"); err != nil {
		return nil, err
	}
	return uc.reports.OverdueTasks(ctx, domain.DateOf(uc.now()))
}

func (uc *UseCase) requireAdmin(ctx context.Context, report string) error {
	user := uc.session.Current(ctx)
	if user == nil {
		return domain.ErrUnauthorized
	}
	if !user.IsAdmin() {
		uc.audit.Log(ctx, appLogger.LevelWarning, "report "+report+" denied for "+user.Username)
		return domain.ErrForbidden
	}
	uc.logger.Debug("report requested", zap.String("report", report), zap.Int("user_id", user.ID))
	return nil
}
