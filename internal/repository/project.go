package repository

import (
	"context"

	"github.com/matkarim/taskdesk/internal/domain"
)

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Archived    *bool
}

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, departmentID string) ([]*domain.Project, error)
	Update(ctx context.Context, id string, input UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type DepartmentRepository interface {
	Create(ctx context.Context, name string) (*domain.Department, error)
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	Delete(ctx context.Context, id string) error
}
