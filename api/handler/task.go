package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/rules"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List visible tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	query, err := parseQuery(ctx.QueryArgs())
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks := h.uc.Search(stdCtx, query)
	h.respondList(ctx, transport.NewTaskViews(tasks, h.uc.Today()), len(tasks))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	draft, err := req.Draft(h.uc.Today())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res := h.uc.CreateTask(stdCtx, draft)
	switch {
	case res.Success:
		h.respondSuccess(ctx, http.StatusCreated, transport.NewTaskView(*res.Task, h.uc.Today()))
	case res.Error == taskUC.MsgNotAuthenticated:
		h.respondError(ctx, domain.ErrUnauthorized)
	case res.Error == taskUC.MsgSaveFailed:
		h.respondJSON(ctx, http.StatusInternalServerError, transport.NewError(string(domain.ErrCodeInternal), res.Error, nil))
	default:
		h.respondInvalid(ctx, strings.Split(res.Error, "\n"))
	}
}

// @Summary Toggle task status
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if !h.uc.ToggleStatus(stdCtx, id) {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"id": id, "toggled": true})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if !h.uc.DeleteTask(stdCtx, id) {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}

// @Summary Task statistics for the current user
// @Tags tasks
// @Router /api/v1/tasks/stats [get]
func (h *TaskHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.uc.Statistics(stdCtx))
}

func parseQuery(args *fasthttp.Args) (taskUC.Query, error) {
	var q taskUC.Query

	if status := string(args.Peek("status")); status != "" {
		q.Criteria.Status = domain.TaskStatus(status)
		if !q.Criteria.Status.Valid() {
			return q, domain.NewError(domain.ErrCodeInvalid, "status must be pending or completed")
		}
	}
	if raw := string(args.Peek("assignee_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return q, domain.NewError(domain.ErrCodeInvalid, "assignee_id must be a positive integer")
		}
		q.Criteria.AssigneeID = id
	}
	if raw := string(args.Peek("overdue")); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return q, domain.NewError(domain.ErrCodeInvalid, "overdue must be a boolean")
		}
		q.Criteria.OverdueOnly = overdue
	}
	q.Criteria.SearchText = strings.TrimSpace(string(args.Peek("q")))

	switch key := rules.SortKey(args.Peek("sort")); key {
	case "", rules.SortByDueDate, rules.SortByTitle, rules.SortByStatus:
		q.SortKey = key
	default:
		return q, domain.NewError(domain.ErrCodeInvalid, "sort must be dueDate, title or status")
	}
	switch dir := rules.Direction(strings.ToLower(string(args.Peek("order")))); dir {
	case "", rules.Asc:
		q.Direction = rules.Asc
	case rules.Desc:
		q.Direction = rules.Desc
	default:
		return q, domain.NewError(domain.ErrCodeInvalid, "order must be asc or desc")
	}
	return q, nil
}
