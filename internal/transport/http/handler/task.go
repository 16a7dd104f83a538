package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
	"github.com/matkarim/taskdesk/internal/usecase"
)

// taskUsecaser is the subset of TaskUsecase the handler needs.
type taskUsecaser interface {
	CreateTask(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, input usecase.ListTasksInput) (usecase.ListTasksResult, error)
	UpdateTask(ctx context.Context, id string, input repository.UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type TaskHandler struct {
	uc     taskUsecaser
	logger *slog.Logger
}

func NewTaskHandler(uc taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{uc: uc, logger: logger.With("component", "task_handler")}
}

type createTaskRequest struct {
	ProjectID string     `json:"project_id" binding:"required,uuid"`
	Title     string     `json:"title"      binding:"required,max=512"`
	Priority  string     `json:"priority"   binding:"omitempty,oneof=low medium high"`
	Assignee  *string    `json:"assignee"   binding:"omitempty,email"`
	DueAt     *time.Time `json:"due_at"`
}

type updateTaskRequest struct {
	Title    *string    `json:"title"    binding:"omitempty,max=512"`
	Status   *string    `json:"status"   binding:"omitempty,oneof=open in_progress done"`
	Priority *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Assignee *string    `json:"assignee" binding:"omitempty,email"`
	DueAt    *time.Time `json:"due_at"`
}

type taskResponse struct {
	ID           string              `json:"id"`
	ProjectID    string              `json:"project_id"`
	DepartmentID string              `json:"department_id"`
	Title        string              `json:"title"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	Assignee     *string             `json:"assignee,omitempty"`
	DueAt        *time.Time          `json:"due_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		DepartmentID: t.DepartmentID,
		Title:        t.Title,
		Status:       t.Status,
		Priority:     t.Priority,
		Assignee:     t.Assignee,
		DueAt:        t.DueAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (h *TaskHandler) Create(ctx *gin.Context) {
	var req createTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.uc.CreateTask(ctx.Request.Context(), usecase.CreateTaskInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Priority:  domain.TaskPriority(req.Priority),
		Assignee:  req.Assignee,
		DueAt:     req.DueAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("create task", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, toTaskResponse(t))
}

func (h *TaskHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListTasks(ctx.Request.Context(), usecase.ListTasksInput{
		DepartmentID: ctx.Query("department_id"),
		ProjectID:    ctx.Query("project_id"),
		Status:       ctx.Query("status"),
		Cursor:       ctx.Query("cursor"),
		Limit:        limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidStatus})
		case errors.Is(err, domain.ErrInvalidCursor):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCursor})
		default:
			h.logger.Error("list tasks", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	items := make([]taskResponse, len(result.Tasks))
	for i, t := range result.Tasks {
		items[i] = toTaskResponse(t)
	}
	ctx.JSON(http.StatusOK, gin.H{
		"tasks":       items,
		"next_cursor": result.NextCursor,
	})
}

func (h *TaskHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	t, err := h.uc.GetTask(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		h.logger.Error("get task", "task_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req updateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := repository.UpdateTaskInput{
		Title:    req.Title,
		Assignee: req.Assignee,
		DueAt:    req.DueAt,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		input.Priority = &p
	}

	t, err := h.uc.UpdateTask(ctx.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
		case errors.Is(err, domain.ErrInvalidStatus):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidStatus})
		default:
			h.logger.Error("update task", "task_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *TaskHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.DeleteTask(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		h.logger.Error("delete task", "task_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}
