package notify

import (
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
)

// ShouldFire reports whether the schedule matches the wall-clock minute of
// now in loc. The match is exact to the minute, not "at or after": with a
// tick cadence of at most one minute this fires exactly once per slot, and
// the day-level claim absorbs any overlap between adjacent ticks. Pure,
// never reads LastRunAt.
func ShouldFire(now time.Time, s *domain.DepartmentSchedule, loc *time.Location) bool {
	local := now.In(loc)
	if !s.HasDay(int(local.Weekday())) {
		return false
	}
	return local.Hour() == s.Hour && local.Minute() == s.Minute
}

// StartOfDay returns midnight of now's calendar date in loc as an absolute
// instant. It is the claim condition's lower bound: a last_run_at at or past
// it means today is already spent.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
