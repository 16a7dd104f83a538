package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/transport/http/handler"
	"github.com/matkarim/taskdesk/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Departments   *handler.DepartmentHandler
	Projects      *handler.ProjectHandler
	Tasks         *handler.TaskHandler
	Notifications *handler.NotificationHandler
}

func NewRouter(logger *slog.Logger, h Handlers, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(jwtKey)

	departments := r.Group("/departments", authMW)
	departments.POST("", h.Departments.Create)
	departments.GET("", h.Departments.List)
	departments.GET("/:id", h.Departments.GetByID)
	departments.DELETE("/:id", h.Departments.Delete)

	projects := r.Group("/projects", authMW)
	projects.POST("", h.Projects.Create)
	projects.GET("", h.Projects.List)
	projects.GET("/:id", h.Projects.GetByID)
	projects.PATCH("/:id", h.Projects.Update)
	projects.DELETE("/:id", h.Projects.Delete)

	tasks := r.Group("/tasks", authMW)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("", h.Tasks.List)
	tasks.GET("/:id", h.Tasks.GetByID)
	tasks.PATCH("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)

	notifications := r.Group("/notifications", authMW)
	notifications.GET("/settings", h.Notifications.GetSettings)
	notifications.PUT("/settings", h.Notifications.UpdateSettings)
	notifications.GET("/schedules", h.Notifications.ListSchedules)
	notifications.PUT("/schedules/:departmentID", h.Notifications.UpsertSchedule)
	notifications.GET("/deliveries", h.Notifications.ListDeliveries)

	return r
}
