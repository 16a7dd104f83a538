package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `
	id, project_id, department_id, title, status, priority,
	assignee, due_at, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	query := fmt.Sprintf(`
		INSERT INTO tasks (project_id, department_id, title, status, priority, assignee, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, taskColumns)

	row := r.pool.QueryRow(ctx, query,
		t.ProjectID, t.DepartmentID, t.Title, t.Status, t.Priority, t.Assignee, t.DueAt,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *TaskRepository) List(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, error) {
	var args []any
	where := []string{"TRUE"}

	if input.DepartmentID != "" {
		args = append(args, input.DepartmentID)
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if input.ProjectID != "" {
		args = append(args, input.ProjectID)
		where = append(where, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		taskColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id string, input repository.UpdateTaskInput) (*domain.Task, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	appendSet := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Title != nil {
		appendSet("title", *input.Title)
	}
	if input.Status != nil {
		appendSet("status", *input.Status)
	}
	if input.Priority != nil {
		appendSet("priority", *input.Priority)
	}
	if input.Assignee != nil {
		appendSet("assignee", *input.Assignee)
	}
	if input.DueAt != nil {
		appendSet("due_at", *input.DueAt)
	}

	query := fmt.Sprintf(`
		UPDATE tasks SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(sets, ", "), taskColumns)

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) ListOpenByDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Task, error) {
	// Overdue first, then by due date; undated tasks last.
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE department_id = $1 AND status <> 'done'
		ORDER BY (due_at IS NOT NULL AND due_at < $2) DESC,
		         due_at ASC NULLS LAST,
		         created_at ASC`, taskColumns)

	rows, err := r.pool.Query(ctx, query, departmentID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.DepartmentID, &t.Title, &t.Status, &t.Priority,
		&t.Assignee, &t.DueAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
