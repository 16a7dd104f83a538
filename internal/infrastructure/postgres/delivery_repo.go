package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

type DeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) Record(ctx context.Context, d *domain.ReportDelivery) (*domain.ReportDelivery, error) {
	query := `
		INSERT INTO report_deliveries (
			department_id, department_name, recipients, subject, delivery_id, task_count
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, department_id, department_name, recipients, subject,
		          delivery_id, task_count, sent_at`

	row := r.pool.QueryRow(ctx, query,
		d.DepartmentID, d.DepartmentName, d.Recipients, d.Subject, d.DeliveryID, d.TaskCount,
	)
	return scanDelivery(row)
}

func (r *DeliveryRepository) List(ctx context.Context, input repository.ListDeliveriesInput) ([]*domain.ReportDelivery, error) {
	var args []any
	where := []string{"TRUE"}

	if input.DepartmentID != "" {
		args = append(args, input.DepartmentID)
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(sent_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, department_id, department_name, recipients, subject,
		       delivery_id, task_count, sent_at
		FROM report_deliveries
		WHERE %s
		ORDER BY sent_at DESC, id DESC
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*domain.ReportDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func scanDelivery(row rowScanner) (*domain.ReportDelivery, error) {
	var d domain.ReportDelivery
	err := row.Scan(
		&d.ID, &d.DepartmentID, &d.DepartmentName, &d.Recipients, &d.Subject,
		&d.DeliveryID, &d.TaskCount, &d.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	return &d, nil
}
