package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// StorageStatus reports the last storage probe.
type StorageStatus interface {
	GetStatus() monitor.Status
}

// ActivityCounts reports how many task events were seen.
type ActivityCounts interface {
	Counts() map[domain.EventName]int
}

// OverdueSummaries exposes the latest reporter run.
type OverdueSummaries interface {
	Last() *services.OverdueSummary
}

type HealthHandler struct {
	baseHandler
	storage  StorageStatus
	activity ActivityCounts
	reporter OverdueSummaries
}

// NewHealthHandler accepts nil activity and reporter.
func NewHealthHandler(storage StorageStatus, activity ActivityCounts, reporter OverdueSummaries, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		storage:     storage,
		activity:    activity,
		reporter:    reporter,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.storage.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"storage":   status,
	}
	if h.activity != nil {
		payload["events"] = h.activity.Counts()
	}
	if h.reporter != nil {
		if last := h.reporter.Last(); last != nil {
			payload["overdue"] = last
		}
	}

	if status.Online {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "storage unavailable", payload))
}
