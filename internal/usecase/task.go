package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

type TaskUsecase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

func NewTaskUsecase(tasks repository.TaskRepository, projects repository.ProjectRepository) *TaskUsecase {
	return &TaskUsecase{tasks: tasks, projects: projects}
}

type CreateTaskInput struct {
	ProjectID string
	Title     string
	Priority  domain.TaskPriority
	Assignee  *string
	DueAt     *time.Time
}

func (u *TaskUsecase) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	// The department is derived from the project, never supplied by the
	// caller, so a task cannot land in a foreign department's report.
	project, err := u.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}

	created, err := u.tasks.Create(ctx, &domain.Task{
		ProjectID:    project.ID,
		DepartmentID: project.DepartmentID,
		Title:        input.Title,
		Status:       domain.TaskOpen,
		Priority:     input.Priority,
		Assignee:     input.Assignee,
		DueAt:        input.DueAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (u *TaskUsecase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := u.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

type ListTasksInput struct {
	DepartmentID string
	ProjectID    string
	Status       string
	Cursor       string
	Limit        int
}

type ListTasksResult struct {
	Tasks      []*domain.Task
	NextCursor *string
}

func (u *TaskUsecase) ListTasks(ctx context.Context, input ListTasksInput) (ListTasksResult, error) {
	limit := clampLimit(input.Limit)

	status := domain.TaskStatus(input.Status)
	switch status {
	case "", domain.TaskOpen, domain.TaskInProgress, domain.TaskDone:
	default:
		return ListTasksResult{}, domain.ErrInvalidStatus
	}

	repoInput := repository.ListTasksInput{
		DepartmentID: input.DepartmentID,
		ProjectID:    input.ProjectID,
		Status:       status,
		Limit:        limit + 1,
	}
	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListTasksResult{}, domain.ErrInvalidCursor
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	tasks, err := u.tasks.List(ctx, repoInput)
	if err != nil {
		return ListTasksResult{}, fmt.Errorf("list tasks: %w", err)
	}

	var nextCursor *string
	if len(tasks) == limit+1 {
		tasks = tasks[:limit]
		last := tasks[limit-1]
		c := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return ListTasksResult{Tasks: tasks, NextCursor: nextCursor}, nil
}

func (u *TaskUsecase) UpdateTask(ctx context.Context, id string, input repository.UpdateTaskInput) (*domain.Task, error) {
	if input.Status != nil {
		switch *input.Status {
		case domain.TaskOpen, domain.TaskInProgress, domain.TaskDone:
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	t, err := u.tasks.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (u *TaskUsecase) DeleteTask(ctx context.Context, id string) error {
	if err := u.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
