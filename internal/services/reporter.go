package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// ReporterConfig controls how often overdue tasks are reported.
type ReporterConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// OverdueSummary is the outcome of a single reporter run.
type OverdueSummary struct {
	Date    domain.Date `json:"date"`
	Count   int         `json:"count"`
	TaskIDs []int       `json:"task_ids"`

	// Tasks holds the matched tasks for callers that render them.
	Tasks []domain.Task `json:"-"`
}

// OverdueReporter logs pending tasks past their due date on a cron schedule.
type OverdueReporter struct {
	reports repository.ReportRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ReporterConfig
	now     func() time.Time

	mu   sync.RWMutex
	last *OverdueSummary
}

func NewOverdueReporter(reports repository.ReportRepository, logger *zap.Logger, cfg ReporterConfig) (*OverdueReporter, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &OverdueReporter{
		reports: reports,
		logger:  logger.Named("reporter"),
		cfg:     cfg,
		cron:    cron.New(),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, fmt.Errorf("schedule overdue reporter: %w", err)
	}
	return r, nil
}

// WithClock replaces the time source that defines "today".
func (r *OverdueReporter) WithClock(now func() time.Time) *OverdueReporter {
	if now != nil {
		r.now = now
	}
	return r
}

// Start launches the cron scheduler.
func (r *OverdueReporter) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("overdue reporter started", zap.Duration("interval", r.cfg.Interval))
}

// Stop halts the scheduler and waits for a running report, bounded by ctx.
func (r *OverdueReporter) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("overdue reporter stopped")
}

// Run computes and logs the overdue list once.
func (r *OverdueReporter) Run(ctx context.Context) (*OverdueSummary, error) {
	today := domain.DateOf(r.now())
	tasks, err := r.reports.OverdueTasks(ctx, today)
	if err != nil {
		return nil, err
	}

	summary := &OverdueSummary{Date: today, Count: len(tasks), TaskIDs: make([]int, 0, len(tasks)), Tasks: tasks}
	for _, t := range tasks {
		summary.TaskIDs = append(summary.TaskIDs, t.ID)
		r.logger.Info("task overdue",
			zap.Int("task_id", t.ID),
			zap.String("title", t.Title),
			zap.Int("assignee_id", t.AssigneeID),
			zap.Stringer("due_at", t.DueAt),
			zap.Int("days_late", today.DaysSince(t.DueAt)))
	}
	r.logger.Info("overdue report", zap.Stringer("date", today), zap.Int("count", summary.Count))

	r.mu.Lock()
	r.last = summary
	r.mu.Unlock()
	return summary, nil
}

// Last returns the most recent summary, or nil before the first run.
func (r *OverdueReporter) Last() *OverdueSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *OverdueReporter) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	if _, err := r.Run(ctx); err != nil {
		r.logger.Error("overdue report failed", zap.Error(err))
	}
}
