package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
	"github.com/robfig/cron/v3"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timeOfDayPattern = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
)

type NotificationUsecase struct {
	settings    repository.SettingsRepository
	schedules   repository.ScheduleRepository
	departments repository.DepartmentRepository
	deliveries  repository.DeliveryRepository
}

func NewNotificationUsecase(
	settings repository.SettingsRepository,
	schedules repository.ScheduleRepository,
	departments repository.DepartmentRepository,
	deliveries repository.DeliveryRepository,
) *NotificationUsecase {
	return &NotificationUsecase{
		settings:    settings,
		schedules:   schedules,
		departments: departments,
		deliveries:  deliveries,
	}
}

// GetSettings returns the singleton settings, or the disabled defaults when
// the row was never created.
func (u *NotificationUsecase) GetSettings(ctx context.Context) (*domain.NotificationSettings, error) {
	s, err := u.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return &domain.NotificationSettings{TimeZone: "UTC", Recipients: []string{}}, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

type UpdateSettingsInput struct {
	Enabled       bool
	Recipients    []string
	TimeZone      string
	SendWhenEmpty bool
}

// UpdateSettings validates and persists the global config in one step:
// nothing is written if any field is rejected, so an enabled config is never
// left partially valid.
func (u *NotificationUsecase) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*domain.NotificationSettings, error) {
	for _, r := range input.Recipients {
		if !emailPattern.MatchString(r) {
			return nil, fmt.Errorf("%w: invalid recipient %q", domain.ErrSettingsInvalid, r)
		}
	}

	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(input.TimeZone); err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTimeZone, input.TimeZone)
	}

	if input.Enabled {
		if len(input.Recipients) == 0 {
			return nil, domain.ErrRecipientsRequired
		}
		enabled, err := u.schedules.ListEnabled(ctx)
		if err != nil {
			return nil, fmt.Errorf("list enabled schedules: %w", err)
		}
		if len(enabled) == 0 {
			return nil, domain.ErrNoEnabledSchedules
		}
	}

	saved, err := u.settings.Save(ctx, &domain.NotificationSettings{
		Enabled:       input.Enabled,
		Recipients:    input.Recipients,
		TimeZone:      input.TimeZone,
		SendWhenEmpty: input.SendWhenEmpty,
	})
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return saved, nil
}

type UpsertScheduleInput struct {
	DepartmentID string
	Enabled      bool
	DaysOfWeek   []int
	TimeOfDay    string // "HH:MM"; required when Enabled
}

// ScheduleWithPreview pairs a schedule with its computed next firing instant.
type ScheduleWithPreview struct {
	Schedule   *domain.DepartmentSchedule
	NextFireAt *time.Time
}

func (u *NotificationUsecase) UpsertSchedule(ctx context.Context, input UpsertScheduleInput) (*ScheduleWithPreview, error) {
	if _, err := u.departments.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, fmt.Errorf("get department: %w", err)
	}

	days := normalizeDays(input.DaysOfWeek)
	for _, d := range input.DaysOfWeek {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: day of week %d out of range", domain.ErrScheduleInvalid, d)
		}
	}

	if input.Enabled {
		if len(days) == 0 {
			return nil, fmt.Errorf("%w: enabled schedule needs at least one day", domain.ErrScheduleInvalid)
		}
		if input.TimeOfDay == "" {
			return nil, fmt.Errorf("%w: enabled schedule needs a time of day", domain.ErrScheduleInvalid)
		}
	}

	var hour, minute int
	if input.TimeOfDay != "" {
		if !timeOfDayPattern.MatchString(input.TimeOfDay) {
			return nil, fmt.Errorf("%w: time of day %q must be HH:MM", domain.ErrScheduleInvalid, input.TimeOfDay)
		}
		hour, _ = strconv.Atoi(input.TimeOfDay[:2])
		minute, _ = strconv.Atoi(input.TimeOfDay[3:])
	}

	saved, err := u.schedules.Upsert(ctx, &domain.DepartmentSchedule{
		DepartmentID: input.DepartmentID,
		Enabled:      input.Enabled,
		DaysOfWeek:   days,
		Hour:         hour,
		Minute:       minute,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert schedule: %w", err)
	}

	return u.withPreview(ctx, saved)
}

func (u *NotificationUsecase) ListSchedules(ctx context.Context) ([]*ScheduleWithPreview, error) {
	schedules, err := u.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	tz := u.configuredTimeZone(ctx)

	out := make([]*ScheduleWithPreview, len(schedules))
	for i, s := range schedules {
		out[i] = &ScheduleWithPreview{Schedule: s, NextFireAt: nextFireAt(s, tz, time.Now())}
	}
	return out, nil
}

func (u *NotificationUsecase) withPreview(ctx context.Context, s *domain.DepartmentSchedule) (*ScheduleWithPreview, error) {
	return &ScheduleWithPreview{
		Schedule:   s,
		NextFireAt: nextFireAt(s, u.configuredTimeZone(ctx), time.Now()),
	}, nil
}

func (u *NotificationUsecase) configuredTimeZone(ctx context.Context) string {
	s, err := u.settings.Get(ctx)
	if err != nil {
		return "UTC"
	}
	return s.TimeZone
}

// nextFireAt previews the next occurrence by translating the schedule into a
// zone-pinned cron spec. Returns nil for disabled or empty schedules.
func nextFireAt(s *domain.DepartmentSchedule, tz string, from time.Time) *time.Time {
	if !s.Enabled || len(s.DaysOfWeek) == 0 {
		return nil
	}

	days := make([]string, len(s.DaysOfWeek))
	for i, d := range s.DaysOfWeek {
		days[i] = strconv.Itoa(d)
	}

	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * %s", tz, s.Minute, s.Hour, strings.Join(days, ","))
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil
	}

	next := sched.Next(from)
	return &next
}

func normalizeDays(days []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, d := range days {
		if d >= 0 && d <= 6 && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}

type ListDeliveriesInput struct {
	DepartmentID string
	Cursor       string
	Limit        int
}

type ListDeliveriesResult struct {
	Deliveries []*domain.ReportDelivery
	NextCursor *string
}

func (u *NotificationUsecase) ListDeliveries(ctx context.Context, input ListDeliveriesInput) (ListDeliveriesResult, error) {
	limit := clampLimit(input.Limit)

	repoInput := repository.ListDeliveriesInput{
		DepartmentID: input.DepartmentID,
		Limit:        limit + 1,
	}
	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListDeliveriesResult{}, domain.ErrInvalidCursor
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	deliveries, err := u.deliveries.List(ctx, repoInput)
	if err != nil {
		return ListDeliveriesResult{}, fmt.Errorf("list deliveries: %w", err)
	}

	var nextCursor *string
	if len(deliveries) == limit+1 {
		deliveries = deliveries[:limit]
		last := deliveries[limit-1]
		c := encodeCursor(last.SentAt, last.ID)
		nextCursor = &c
	}

	return ListDeliveriesResult{Deliveries: deliveries, NextCursor: nextCursor}, nil
}
