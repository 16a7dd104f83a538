package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/report"
	"github.com/matkarim/taskdesk/internal/repository"
)

// ---- fakes ----

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *domain.NotificationSettings
	getErr   error
	gets     int
}

func (r *fakeSettingsRepo) Get(context.Context) (*domain.NotificationSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.settings, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *domain.NotificationSettings) (*domain.NotificationSettings, error) {
	return s, nil
}

// fakeScheduleRepo reproduces the conditional-write semantics of the real
// claim in memory, so concurrency tests exercise the same winner-picking
// the database would do.
type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules []*domain.DepartmentSchedule
	claims    int
	releases  int
}

func (r *fakeScheduleRepo) byID(id string) *domain.DepartmentSchedule {
	for _, s := range r.schedules {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *fakeScheduleRepo) List(context.Context) ([]*domain.DepartmentSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedules, nil
}

func (r *fakeScheduleRepo) ListEnabled(context.Context) ([]*domain.DepartmentSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DepartmentSchedule
	for _, s := range r.schedules {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetByDepartment(_ context.Context, departmentID string) (*domain.DepartmentSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.DepartmentID == departmentID {
			return s, nil
		}
	}
	return nil, domain.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) Upsert(_ context.Context, s *domain.DepartmentSchedule) (*domain.DepartmentSchedule, error) {
	return s, nil
}

func (r *fakeScheduleRepo) TryClaim(_ context.Context, scheduleID string, now, startOfDay time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims++
	s := r.byID(scheduleID)
	if s == nil {
		return false, domain.ErrScheduleNotFound
	}
	if s.LastRunAt != nil && !s.LastRunAt.Before(startOfDay) {
		return false, nil
	}
	t := now
	s.LastRunAt = &t
	return true, nil
}

func (r *fakeScheduleRepo) Release(_ context.Context, scheduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releases++
	if s := r.byID(scheduleID); s != nil {
		s.LastRunAt = nil
	}
	return nil
}

type fakeDeliveryRepo struct {
	mu        sync.Mutex
	recorded  []*domain.ReportDelivery
	recordErr error
}

func (r *fakeDeliveryRepo) Record(_ context.Context, d *domain.ReportDelivery) (*domain.ReportDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return nil, r.recordErr
	}
	r.recorded = append(r.recorded, d)
	return d, nil
}

func (r *fakeDeliveryRepo) List(context.Context, repository.ListDeliveriesInput) ([]*domain.ReportDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded, nil
}

type fakeGenerator struct {
	taskCount int
	err       error
}

func (g *fakeGenerator) Generate(context.Context, string, string, time.Time) (*report.Payload, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &report.Payload{HTML: "<h2>report</h2>", TaskCount: g.taskCount}, nil
}

type fakeSender struct {
	mu       sync.Mutex
	sends    int
	err      error
	lastTo   []string
	lastSubj string
}

func (s *fakeSender) Send(_ context.Context, to []string, subject, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sends++
	s.lastTo = to
	s.lastSubj = subject
	return "msg-1", nil
}

func (s *fakeSender) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enabledSettings() *domain.NotificationSettings {
	return &domain.NotificationSettings{
		Enabled:    true,
		Recipients: []string{"ops@co.com"},
		TimeZone:   "Asia/Kolkata",
	}
}

func mondaySchedule() *domain.DepartmentSchedule {
	return &domain.DepartmentSchedule{
		ID:             "sched-1",
		DepartmentID:   "dept-1",
		DepartmentName: "Engineering",
		Enabled:        true,
		DaysOfWeek:     []int{1},
		Hour:           18,
		Minute:         0,
	}
}

type testRig struct {
	scheduler  *Scheduler
	settings   *fakeSettingsRepo
	schedules  *fakeScheduleRepo
	deliveries *fakeDeliveryRepo
	sender     *fakeSender
	generator  *fakeGenerator
}

func newTestRig(settings *domain.NotificationSettings, schedules ...*domain.DepartmentSchedule) *testRig {
	rig := &testRig{
		settings:   &fakeSettingsRepo{settings: settings},
		schedules:  &fakeScheduleRepo{schedules: schedules},
		deliveries: &fakeDeliveryRepo{},
		sender:     &fakeSender{},
		generator:  &fakeGenerator{taskCount: 3},
	}
	executor := NewExecutor(rig.generator, rig.sender, rig.deliveries, rig.schedules, discardLogger())
	rig.scheduler = NewScheduler(rig.settings, rig.schedules, executor, discardLogger(), time.Minute, 4)
	return rig
}

func (rig *testRig) tickAt(t *testing.T, instant time.Time) {
	t.Helper()
	rig.scheduler.now = func() time.Time { return instant }
	rig.scheduler.tick(context.Background())
}

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

// 2026-08-31 is a Monday.
func mondayAt(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 8, 31, hour, minute, 0, 0, kolkata(t))
}

// ---- tick ----

func TestTick_FiresExactlyOnceAcrossAdjacentTicks(t *testing.T) {
	rig := newTestRig(enabledSettings(), mondaySchedule())

	// One tick per minute from 17:58 through 19:00.
	for m := 0; m <= 62; m++ {
		rig.tickAt(t, mondayAt(t, 17, 58).Add(time.Duration(m)*time.Minute))
	}

	if got := rig.sender.sendCount(); got != 1 {
		t.Fatalf("sends = %d, want exactly 1", got)
	}
	if len(rig.deliveries.recorded) != 1 {
		t.Fatalf("recorded deliveries = %d, want 1", len(rig.deliveries.recorded))
	}
	if rig.schedules.schedules[0].LastRunAt == nil {
		t.Error("LastRunAt not set after delivery")
	}
}

func TestTick_SkipsOnMismatch(t *testing.T) {
	rig := newTestRig(enabledSettings(), mondaySchedule())

	rig.tickAt(t, mondayAt(t, 18, 1))                       // wrong minute
	rig.tickAt(t, mondayAt(t, 18, 0).Add(24*time.Hour))     // Tuesday 18:00
	rig.tickAt(t, mondayAt(t, 17, 59))                      // minute before

	if rig.schedules.claims != 0 {
		t.Errorf("claims = %d, want 0", rig.schedules.claims)
	}
	if got := rig.sender.sendCount(); got != 0 {
		t.Errorf("sends = %d, want 0", got)
	}
}

func TestTick_ConcurrentEvaluators_SingleWinner(t *testing.T) {
	// Several scheduler instances sharing one store, all ticking the same
	// minute at once. The claim must pick exactly one winner.
	shared := &fakeScheduleRepo{schedules: []*domain.DepartmentSchedule{mondaySchedule()}}
	deliveries := &fakeDeliveryRepo{}
	sender := &fakeSender{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		settings := &fakeSettingsRepo{settings: enabledSettings()}
		executor := NewExecutor(&fakeGenerator{taskCount: 1}, sender, deliveries, shared, discardLogger())
		s := NewScheduler(settings, shared, executor, discardLogger(), time.Minute, 4)
		s.now = func() time.Time { return mondayAt(t, 18, 0) }

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tick(context.Background())
		}()
	}
	wg.Wait()

	if got := sender.sendCount(); got != 1 {
		t.Fatalf("sends = %d, want exactly 1 across all evaluators", got)
	}
	if len(deliveries.recorded) != 1 {
		t.Errorf("recorded deliveries = %d, want 1", len(deliveries.recorded))
	}
}

func TestTick_DisabledSettingsShortCircuit(t *testing.T) {
	settings := enabledSettings()
	settings.Enabled = false
	rig := newTestRig(settings, mondaySchedule())

	rig.tickAt(t, mondayAt(t, 18, 0))

	if rig.schedules.claims != 0 {
		t.Errorf("claims = %d, want 0 with notifications disabled", rig.schedules.claims)
	}
	if got := rig.sender.sendCount(); got != 0 {
		t.Errorf("sends = %d, want 0", got)
	}
}

func TestTick_MissingSettingsIsQuietNoop(t *testing.T) {
	rig := newTestRig(nil, mondaySchedule())
	rig.settings.getErr = domain.ErrSettingsNotFound

	rig.tickAt(t, mondayAt(t, 18, 0))

	if rig.schedules.claims != 0 {
		t.Errorf("claims = %d, want 0 when settings were never configured", rig.schedules.claims)
	}
}

func TestTick_BadTimeZoneAbandonsPass(t *testing.T) {
	settings := enabledSettings()
	settings.TimeZone = "Mars/Olympus"
	rig := newTestRig(settings, mondaySchedule())

	rig.tickAt(t, mondayAt(t, 18, 0))

	if rig.schedules.claims != 0 {
		t.Errorf("claims = %d, want 0 on unknown zone", rig.schedules.claims)
	}
}

func TestTick_EmptyDaySetNeverFires(t *testing.T) {
	sched := mondaySchedule()
	sched.DaysOfWeek = nil
	rig := newTestRig(enabledSettings(), sched)

	rig.tickAt(t, mondayAt(t, 18, 0))

	if rig.schedules.claims != 0 {
		t.Errorf("claims = %d, want 0 for empty day set", rig.schedules.claims)
	}
}

func TestTick_FailureReleasesAndNextWeekSucceeds(t *testing.T) {
	rig := newTestRig(enabledSettings(), mondaySchedule())
	sendErr := errors.New("smtp unavailable")
	rig.sender.err = sendErr

	rig.tickAt(t, mondayAt(t, 18, 0))

	if rig.schedules.releases != 1 {
		t.Fatalf("releases = %d, want 1 after failed delivery", rig.schedules.releases)
	}
	if rig.schedules.schedules[0].LastRunAt != nil {
		t.Fatal("LastRunAt not cleared after failed delivery")
	}
	if len(rig.deliveries.recorded) != 0 {
		t.Fatalf("recorded deliveries = %d, want 0", len(rig.deliveries.recorded))
	}

	// The rest of the day never matches 18:00 again, so nothing fires.
	rig.tickAt(t, mondayAt(t, 18, 1))
	rig.tickAt(t, mondayAt(t, 23, 59))
	if got := rig.sender.sendCount(); got != 0 {
		t.Fatalf("sends = %d, want 0 for the rest of the failed day", got)
	}

	// Next Monday, transport recovered: the slot fires and succeeds.
	rig.sender.err = nil
	rig.tickAt(t, mondayAt(t, 18, 0).Add(7*24*time.Hour))
	if got := rig.sender.sendCount(); got != 1 {
		t.Fatalf("sends = %d, want 1 on the next weekly slot", got)
	}
}

// ---- Start / Stop ----

func TestStartStop_IdempotentAndClean(t *testing.T) {
	settings := enabledSettings()
	settings.Enabled = false
	rig := newTestRig(settings)
	rig.scheduler.interval = 2 * time.Millisecond

	rig.scheduler.Start()
	rig.scheduler.Start() // restarts, must not leak the first loop
	time.Sleep(30 * time.Millisecond)
	rig.scheduler.Stop()
	rig.scheduler.Stop() // no-op when already stopped

	rig.settings.mu.Lock()
	after := rig.settings.gets
	rig.settings.mu.Unlock()
	if after == 0 {
		t.Error("loop never ticked before Stop")
	}

	time.Sleep(15 * time.Millisecond)
	rig.settings.mu.Lock()
	final := rig.settings.gets
	rig.settings.mu.Unlock()
	if final != after {
		t.Errorf("loop still ticking after Stop: %d -> %d", after, final)
	}
}
