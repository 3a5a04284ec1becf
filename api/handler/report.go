package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	reportUC "github.com/fastygo/taskboard/usecase/report"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type ReportHandler struct {
	baseHandler
	uc    *reportUC.UseCase
	tasks *taskUC.UseCase
}

// NewReportHandler takes the task use case only for its notion of today.
func NewReportHandler(uc *reportUC.UseCase, tasks *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		tasks:       tasks,
	}
}

// @Summary All tasks by due date (admin)
// @Tags reports
// @Router /api/v1/reports/by-due-date [get]
func (h *ReportHandler) ByDueDate(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ByDueDate(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, transport.NewTaskViews(tasks, h.tasks.Today()), len(tasks))
}

// @Summary Task counts per user and status (admin)
// @Tags reports
// @Router /api/v1/reports/counts [get]
func (h *ReportHandler) Counts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	counts, err := h.uc.CountsByUserAndStatus(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, counts, len(counts))
}

// @Summary Overdue pending tasks (admin)
// @Tags reports
// @Router /api/v1/reports/overdue [get]
func (h *ReportHandler) Overdue(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Overdue(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, transport.NewTaskViews(tasks, h.tasks.Today()), len(tasks))
}
