package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Report *apiHandler.ReportHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.GET("/api/v1/auth/me", authMiddleware(handlers.Auth.Me))

	// Tasks
	api := r.Group("/api/v1")
	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/stats", authMiddleware(handlers.Task.Stats))
	api.POST("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Administrator reports
	api.GET("/reports/by-due-date", authMiddleware(handlers.Report.ByDueDate))
	api.GET("/reports/counts", authMiddleware(handlers.Report.Counts))
	api.GET("/reports/overdue", authMiddleware(handlers.Report.Overdue))

	return r
}
