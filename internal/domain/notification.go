package domain

import (
	"errors"
	"time"
)

var (
	ErrScheduleNotFound   = errors.New("department schedule not found")
	ErrSettingsNotFound   = errors.New("notification settings not configured")
	ErrSettingsInvalid    = errors.New("notification settings are invalid")
	ErrScheduleInvalid    = errors.New("department schedule is invalid")
	ErrUnknownTimeZone    = errors.New("unknown IANA time zone")
	ErrNoEnabledSchedules = errors.New("enabling notifications requires at least one enabled department schedule")
	ErrRecipientsRequired = errors.New("enabling notifications requires at least one recipient")
)

// NotificationSettings is a lazily created singleton row. TimeZone is the
// frame in which every schedule's weekday and time-of-day are evaluated,
// independent of the host clock.
type NotificationSettings struct {
	Enabled       bool
	Recipients    []string
	TimeZone      string
	SendWhenEmpty bool
	UpdatedAt     time.Time
}

// DepartmentSchedule describes when one department's report should go out.
// LastRunAt is the sole piece of shared mutable state in the scheduler: it is
// set forward by a winning claim and reset to nil when delivery fails. Nobody
// else writes it.
type DepartmentSchedule struct {
	ID             string
	DepartmentID   string
	DepartmentName string
	Enabled        bool
	DaysOfWeek     []int // 0 = Sunday .. 6 = Saturday, in the configured zone
	Hour           int
	Minute         int
	LastRunAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasDay reports whether weekday (0 = Sunday) is in the schedule's day set.
func (s *DepartmentSchedule) HasDay(weekday int) bool {
	for _, d := range s.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// ReportDelivery is one audit record per successfully delivered report.
type ReportDelivery struct {
	ID             string
	DepartmentID   string
	DepartmentName string
	Recipients     []string
	Subject        string
	DeliveryID     string
	TaskCount      int
	SentAt         time.Time
}
