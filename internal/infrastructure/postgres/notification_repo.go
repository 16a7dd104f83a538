package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matkarim/taskdesk/internal/domain"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.NotificationSettings, error) {
	query := `
		SELECT enabled, recipients, time_zone, send_when_empty, updated_at
		FROM notification_settings
		WHERE id = 1`

	var s domain.NotificationSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.Enabled, &s.Recipients, &s.TimeZone, &s.SendWhenEmpty, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get notification settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.NotificationSettings) (*domain.NotificationSettings, error) {
	query := `
		INSERT INTO notification_settings (id, enabled, recipients, time_zone, send_when_empty, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			enabled         = EXCLUDED.enabled,
			recipients      = EXCLUDED.recipients,
			time_zone       = EXCLUDED.time_zone,
			send_when_empty = EXCLUDED.send_when_empty,
			updated_at      = NOW()
		RETURNING enabled, recipients, time_zone, send_when_empty, updated_at`

	var saved domain.NotificationSettings
	err := r.pool.QueryRow(ctx, query,
		s.Enabled, s.Recipients, s.TimeZone, s.SendWhenEmpty,
	).Scan(&saved.Enabled, &saved.Recipients, &saved.TimeZone, &saved.SendWhenEmpty, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save notification settings: %w", err)
	}
	return &saved, nil
}

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `
	s.id, s.department_id, d.name, s.enabled, s.days_of_week,
	s.hour, s.minute, s.last_run_at, s.created_at, s.updated_at`

func (r *ScheduleRepository) List(ctx context.Context) ([]*domain.DepartmentSchedule, error) {
	return r.list(ctx, "")
}

func (r *ScheduleRepository) ListEnabled(ctx context.Context) ([]*domain.DepartmentSchedule, error) {
	return r.list(ctx, "WHERE s.enabled")
}

func (r *ScheduleRepository) list(ctx context.Context, where string) ([]*domain.DepartmentSchedule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM department_schedules s
		JOIN departments d ON d.id = s.department_id
		%s
		ORDER BY d.name ASC`, scheduleColumns, where)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.DepartmentSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) GetByDepartment(ctx context.Context, departmentID string) (*domain.DepartmentSchedule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM department_schedules s
		JOIN departments d ON d.id = s.department_id
		WHERE s.department_id = $1`, scheduleColumns)

	return scanSchedule(r.pool.QueryRow(ctx, query, departmentID))
}

func (r *ScheduleRepository) Upsert(ctx context.Context, s *domain.DepartmentSchedule) (*domain.DepartmentSchedule, error) {
	// last_run_at deliberately untouched: reconfiguring a schedule must not
	// re-arm a day that was already claimed.
	query := `
		WITH upserted AS (
			INSERT INTO department_schedules (department_id, enabled, days_of_week, hour, minute)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (department_id) DO UPDATE SET
				enabled      = EXCLUDED.enabled,
				days_of_week = EXCLUDED.days_of_week,
				hour         = EXCLUDED.hour,
				minute       = EXCLUDED.minute,
				updated_at   = NOW()
			RETURNING id, department_id, enabled, days_of_week, hour, minute,
			          last_run_at, created_at, updated_at
		)
		SELECT u.id, u.department_id, d.name, u.enabled, u.days_of_week,
		       u.hour, u.minute, u.last_run_at, u.created_at, u.updated_at
		FROM upserted u
		JOIN departments d ON d.id = u.department_id`

	return scanSchedule(r.pool.QueryRow(ctx, query,
		s.DepartmentID, s.Enabled, s.DaysOfWeek, s.Hour, s.Minute,
	))
}

// TryClaim performs the day-level compare-and-set. The conditional UPDATE is
// evaluated atomically by Postgres, so among any number of concurrent callers
// (goroutines, processes, machines) exactly one observes RowsAffected == 1.
func (r *ScheduleRepository) TryClaim(ctx context.Context, scheduleID string, now, startOfDay time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE department_schedules
		SET    last_run_at = $2,
		       updated_at  = NOW()
		WHERE  id = $1
		  AND  (last_run_at IS NULL OR last_run_at < $3)`,
		scheduleID, now, startOfDay)
	if err != nil {
		return false, fmt.Errorf("claim schedule: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ScheduleRepository) Release(ctx context.Context, scheduleID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE department_schedules
		SET    last_run_at = NULL,
		       updated_at  = NOW()
		WHERE  id = $1`,
		scheduleID)
	if err != nil {
		return fmt.Errorf("release schedule: %w", err)
	}
	return nil
}

func scanSchedule(row rowScanner) (*domain.DepartmentSchedule, error) {
	var s domain.DepartmentSchedule
	err := row.Scan(
		&s.ID, &s.DepartmentID, &s.DepartmentName, &s.Enabled, &s.DaysOfWeek,
		&s.Hour, &s.Minute, &s.LastRunAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	return &s, nil
}
