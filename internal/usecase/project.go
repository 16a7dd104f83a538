package usecase

import (
	"context"
	"fmt"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

type ProjectUsecase struct {
	projects    repository.ProjectRepository
	departments repository.DepartmentRepository
}

func NewProjectUsecase(projects repository.ProjectRepository, departments repository.DepartmentRepository) *ProjectUsecase {
	return &ProjectUsecase{projects: projects, departments: departments}
}

type CreateProjectInput struct {
	DepartmentID string
	Name         string
	Description  *string
}

func (u *ProjectUsecase) CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	if _, err := u.departments.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, fmt.Errorf("get department: %w", err)
	}

	created, err := u.projects.Create(ctx, &domain.Project{
		DepartmentID: input.DepartmentID,
		Name:         input.Name,
		Description:  input.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (u *ProjectUsecase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p, err := u.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (u *ProjectUsecase) ListProjects(ctx context.Context, departmentID string) ([]*domain.Project, error) {
	projects, err := u.projects.List(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (u *ProjectUsecase) UpdateProject(ctx context.Context, id string, input repository.UpdateProjectInput) (*domain.Project, error) {
	p, err := u.projects.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (u *ProjectUsecase) DeleteProject(ctx context.Context, id string) error {
	if err := u.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

type DepartmentUsecase struct {
	departments repository.DepartmentRepository
}

func NewDepartmentUsecase(departments repository.DepartmentRepository) *DepartmentUsecase {
	return &DepartmentUsecase{departments: departments}
}

func (u *DepartmentUsecase) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	d, err := u.departments.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

func (u *DepartmentUsecase) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	d, err := u.departments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

func (u *DepartmentUsecase) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	departments, err := u.departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

func (u *DepartmentUsecase) DeleteDepartment(ctx context.Context, id string) error {
	if err := u.departments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}
