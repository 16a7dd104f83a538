package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
	"github.com/matkarim/taskdesk/internal/usecase"
)

// projectUsecaser is the subset of ProjectUsecase the handler needs.
type projectUsecaser interface {
	CreateProject(ctx context.Context, input usecase.CreateProjectInput) (*domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, departmentID string) ([]*domain.Project, error)
	UpdateProject(ctx context.Context, id string, input repository.UpdateProjectInput) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type ProjectHandler struct {
	uc     projectUsecaser
	logger *slog.Logger
}

func NewProjectHandler(uc projectUsecaser, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{uc: uc, logger: logger.With("component", "project_handler")}
}

type createProjectRequest struct {
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	Name         string  `json:"name"          binding:"required,max=256"`
	Description  *string `json:"description"   binding:"omitempty,max=4096"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=256"`
	Description *string `json:"description" binding:"omitempty,max=4096"`
	Archived    *bool   `json:"archived"`
}

type projectResponse struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Name:         p.Name,
		Description:  p.Description,
		Archived:     p.Archived,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	var req createProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.CreateProject(ctx.Request.Context(), usecase.CreateProjectInput{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDepartmentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errDepartmentNotFound})
			return
		}
		h.logger.Error("create project", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, toProjectResponse(p))
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	projects, err := h.uc.ListProjects(ctx.Request.Context(), ctx.Query("department_id"))
	if err != nil {
		h.logger.Error("list projects", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]projectResponse, len(projects))
	for i, p := range projects {
		items[i] = toProjectResponse(p)
	}
	ctx.JSON(http.StatusOK, gin.H{"projects": items})
}

func (h *ProjectHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	p, err := h.uc.GetProject(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("get project", "project_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, toProjectResponse(p))
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req updateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.UpdateProject(ctx.Request.Context(), id, repository.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Archived:    req.Archived,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("update project", "project_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, toProjectResponse(p))
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.DeleteProject(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("delete project", "project_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}
