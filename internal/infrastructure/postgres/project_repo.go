package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, department_id, name, description, archived, created_at, updated_at`

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := fmt.Sprintf(`
		INSERT INTO projects (department_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING %s`, projectColumns)

	row := r.pool.QueryRow(ctx, query, p.DepartmentID, p.Name, p.Description)
	return scanProject(row)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

func (r *ProjectRepository) List(ctx context.Context, departmentID string) ([]*domain.Project, error) {
	var args []any
	where := "TRUE"
	if departmentID != "" {
		args = append(args, departmentID)
		where = "department_id = $1"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM projects
		WHERE %s
		ORDER BY created_at DESC`, projectColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, id string, input repository.UpdateProjectInput) (*domain.Project, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if input.Name != nil {
		args = append(args, *input.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if input.Description != nil {
		args = append(args, *input.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if input.Archived != nil {
		args = append(args, *input.Archived)
		sets = append(sets, fmt.Sprintf("archived = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE projects SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(sets, ", "), projectColumns)

	return scanProject(r.pool.QueryRow(ctx, query, args...))
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.DepartmentID, &p.Name, &p.Description, &p.Archived,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
