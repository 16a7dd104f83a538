package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matkarim/taskdesk/internal/domain"
)

type DepartmentRepository struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func (r *DepartmentRepository) Create(ctx context.Context, name string) (*domain.Department, error) {
	query := `
		INSERT INTO departments (name)
		VALUES ($1)
		RETURNING id, name, created_at`

	d, err := scanDepartment(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDepartmentNameConflict
		}
		return nil, err
	}
	return d, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	query := `SELECT id, name, created_at FROM departments WHERE id = $1`
	return scanDepartment(r.pool.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []*domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func scanDepartment(row rowScanner) (*domain.Department, error) {
	var d domain.Department
	err := row.Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("scan department: %w", err)
	}
	return &d, nil
}
