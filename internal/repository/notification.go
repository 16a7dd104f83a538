package repository

import (
	"context"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
)

// SettingsRepository owns the singleton notification settings row.
type SettingsRepository interface {
	// Get returns domain.ErrSettingsNotFound when the row was never created.
	Get(ctx context.Context) (*domain.NotificationSettings, error)
	// Save upserts the singleton row.
	Save(ctx context.Context, s *domain.NotificationSettings) (*domain.NotificationSettings, error)
}

// ScheduleRepository owns department schedules, including the claim that
// serializes "who sends today's report" across process instances.
type ScheduleRepository interface {
	List(ctx context.Context) ([]*domain.DepartmentSchedule, error)
	ListEnabled(ctx context.Context) ([]*domain.DepartmentSchedule, error)
	GetByDepartment(ctx context.Context, departmentID string) (*domain.DepartmentSchedule, error)
	Upsert(ctx context.Context, s *domain.DepartmentSchedule) (*domain.DepartmentSchedule, error)

	// TryClaim is the single atomic conditional write the whole scheduler
	// hangs on: set last_run_at = now iff it is NULL or before startOfDay
	// (midnight of "today" in the configured zone). Exactly one caller among
	// any concurrent set sees true; everyone else sees false. false is not
	// an error; someone else owns today.
	TryClaim(ctx context.Context, scheduleID string, now, startOfDay time.Time) (bool, error)

	// Release clears last_run_at after a failed delivery so the schedule's
	// next natural occurrence can fire again. Only the execution that won
	// the claim may call it.
	Release(ctx context.Context, scheduleID string) error
}

type ListDeliveriesInput struct {
	DepartmentID string     // empty = all departments
	CursorTime   *time.Time // cursor on (sent_at DESC, id DESC)
	CursorID     string
	Limit        int
}

type DeliveryRepository interface {
	Record(ctx context.Context, d *domain.ReportDelivery) (*domain.ReportDelivery, error)
	List(ctx context.Context, input ListDeliveriesInput) ([]*domain.ReportDelivery, error)
}
