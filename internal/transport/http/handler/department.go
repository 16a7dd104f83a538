package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matkarim/taskdesk/internal/domain"
)

// departmentUsecaser is the subset of DepartmentUsecase the handler needs.
type departmentUsecaser interface {
	CreateDepartment(ctx context.Context, name string) (*domain.Department, error)
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

type DepartmentHandler struct {
	uc     departmentUsecaser
	logger *slog.Logger
}

func NewDepartmentHandler(uc departmentUsecaser, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{uc: uc, logger: logger.With("component", "department_handler")}
}

type createDepartmentRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type departmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toDepartmentResponse(d *domain.Department) departmentResponse {
	return departmentResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
}

func (h *DepartmentHandler) Create(ctx *gin.Context) {
	var req createDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.uc.CreateDepartment(ctx.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDepartmentNameConflict) {
			ctx.JSON(http.StatusConflict, gin.H{"error": errDepartmentNameConflict})
			return
		}
		h.logger.Error("create department", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, toDepartmentResponse(d))
}

func (h *DepartmentHandler) List(ctx *gin.Context) {
	departments, err := h.uc.ListDepartments(ctx.Request.Context())
	if err != nil {
		h.logger.Error("list departments", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]departmentResponse, len(departments))
	for i, d := range departments {
		items[i] = toDepartmentResponse(d)
	}
	ctx.JSON(http.StatusOK, gin.H{"departments": items})
}

func (h *DepartmentHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	d, err := h.uc.GetDepartment(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDepartmentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errDepartmentNotFound})
			return
		}
		h.logger.Error("get department", "department_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, toDepartmentResponse(d))
}

func (h *DepartmentHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.DeleteDepartment(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDepartmentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errDepartmentNotFound})
			return
		}
		h.logger.Error("delete department", "department_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}
