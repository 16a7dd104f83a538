package repository

import (
	"context"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
)

type ListTasksInput struct {
	DepartmentID string            // empty = all departments
	ProjectID    string            // empty = all projects
	Status       domain.TaskStatus // empty = all statuses
	CursorTime   *time.Time        // cursor on (created_at DESC, id DESC); nil = first page
	CursorID     string
	Limit        int
}

type UpdateTaskInput struct {
	Title    *string
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Assignee *string
	DueAt    *time.Time
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error)
	Update(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id string) error

	// ListOpenByDepartment feeds the report generator: every task in the
	// department that is not done as of asOf, overdue first.
	ListOpenByDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Task, error)
}
