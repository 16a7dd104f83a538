package notify

import (
	"testing"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
)

func TestShouldFire_ExactMinuteMatch(t *testing.T) {
	loc := kolkata(t)
	sched := mondaySchedule() // Monday 18:00

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"monday 18:00", mondayAt(t, 18, 0), true},
		{"monday 18:00:59", mondayAt(t, 18, 0).Add(59 * time.Second), true},
		{"monday 17:59", mondayAt(t, 17, 59), false},
		{"monday 18:01", mondayAt(t, 18, 1), false},
		{"tuesday 18:00", mondayAt(t, 18, 0).Add(24 * time.Hour), false},
		{"sunday 18:00", mondayAt(t, 18, 0).Add(-24 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldFire(tc.now, sched, loc); got != tc.want {
				t.Errorf("ShouldFire(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestShouldFire_InstantZoneDoesNotMatter(t *testing.T) {
	loc := kolkata(t)
	sched := mondaySchedule()

	// The same instant expressed in UTC must evaluate identically: matching
	// happens in the configured zone, never in the instant's own.
	instant := mondayAt(t, 18, 0)
	if !ShouldFire(instant.UTC(), sched, loc) {
		t.Error("UTC-expressed instant did not match")
	}
}

func TestShouldFire_WeekdayComputedInConfiguredZone(t *testing.T) {
	loc := kolkata(t)

	// Monday 00:30 in Kolkata is still Sunday evening in UTC. A Monday-only
	// schedule must fire: the weekday comes from the configured zone.
	sched := &domain.DepartmentSchedule{DaysOfWeek: []int{1}, Hour: 0, Minute: 30}
	instant := time.Date(2026, 8, 31, 0, 30, 0, 0, loc)
	if instant.UTC().Weekday() != time.Sunday {
		t.Fatalf("test premise broken: %v is not Sunday in UTC", instant.UTC())
	}
	if !ShouldFire(instant.UTC(), sched, loc) {
		t.Error("want fire on Monday-in-zone even though the instant is Sunday in UTC")
	}
}

func TestShouldFire_MultiDaySet(t *testing.T) {
	loc := kolkata(t)
	sched := &domain.DepartmentSchedule{DaysOfWeek: []int{1, 3, 5}, Hour: 18, Minute: 0}

	wednesday := mondayAt(t, 18, 0).Add(2 * 24 * time.Hour)
	if !ShouldFire(wednesday, sched, loc) {
		t.Error("Wednesday 18:00 should match {Mon,Wed,Fri}")
	}
	thursday := wednesday.Add(24 * time.Hour)
	if ShouldFire(thursday, sched, loc) {
		t.Error("Thursday 18:00 should not match {Mon,Wed,Fri}")
	}
}

func TestStartOfDay_MidnightInConfiguredZone(t *testing.T) {
	loc := kolkata(t)

	got := StartOfDay(mondayAt(t, 2, 0), loc)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}

	// Kolkata midnight is 18:30 the previous day in UTC.
	if wantUTC := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC); !got.Equal(wantUTC) {
		t.Errorf("StartOfDay as instant = %v, want %v", got.UTC(), wantUTC)
	}
}

func TestStartOfDay_InstantZoneDoesNotMatter(t *testing.T) {
	loc := kolkata(t)

	local := StartOfDay(mondayAt(t, 23, 0), loc)
	viaUTC := StartOfDay(mondayAt(t, 23, 0).UTC(), loc)
	if !local.Equal(viaUTC) {
		t.Errorf("StartOfDay differs by input zone: %v vs %v", local, viaUTC)
	}
}
