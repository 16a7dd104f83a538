package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/metrics"
	"github.com/matkarim/taskdesk/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Scheduler is the per-minute evaluation loop. Correctness does not depend on
// there being only one of these: any number of instances may tick against the
// same database, and the claim's conditional write picks a single winner per
// schedule and day.
type Scheduler struct {
	settings      repository.SettingsRepository
	schedules     repository.ScheduleRepository
	executor      *Executor
	logger        *slog.Logger
	interval      time.Duration
	maxConcurrent int
	now           func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(
	settings repository.SettingsRepository,
	schedules repository.ScheduleRepository,
	executor *Executor,
	logger *slog.Logger,
	interval time.Duration,
	maxConcurrent int,
) *Scheduler {
	return &Scheduler{
		settings:      settings,
		schedules:     schedules,
		executor:      executor,
		logger:        logger.With("component", "notify_scheduler"),
		interval:      interval,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// Start launches the ticking loop. Idempotent: any prior run is stopped
// first, so two Start calls never leave two timers running.
func (s *Scheduler) Start() {
	s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done)
}

// Stop halts the loop and waits for the in-progress tick, if any, to finish.
// Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	metrics.SchedulerRunning.Set(1)
	defer metrics.SchedulerRunning.Set(0)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("notification scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notification scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick is one full evaluation pass. A settings or schedule read failure
// abandons the pass; the next tick starts clean. Individual schedules fail
// independently.
func (s *Scheduler) tick(ctx context.Context) {
	metrics.SchedulerTicksTotal.Inc()

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			s.logger.Error("load settings, abandoning tick", "error", err)
		}
		return
	}
	if !cfg.Enabled {
		return
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		s.logger.Error("bad configured time zone", "time_zone", cfg.TimeZone, "error", err)
		return
	}

	schedules, err := s.schedules.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("list schedules, abandoning tick", "error", err)
		return
	}

	now := s.now()

	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrent)

	for _, sched := range schedules {
		if len(sched.DaysOfWeek) == 0 {
			s.logger.Warn("enabled schedule has empty day set, skipping", "department", sched.DepartmentName)
			continue
		}
		if !ShouldFire(now, sched, loc) {
			continue
		}
		g.Go(func() error {
			s.fire(ctx, sched, cfg, loc, now)
			return nil
		})
	}

	// fire never returns an error; one slow department must not sink the rest.
	_ = g.Wait()
}

func (s *Scheduler) fire(ctx context.Context, sched *domain.DepartmentSchedule, cfg *domain.NotificationSettings, loc *time.Location, now time.Time) {
	won, err := s.schedules.TryClaim(ctx, sched.ID, now, StartOfDay(now, loc))
	if err != nil {
		s.logger.Error("claim", "department", sched.DepartmentName, "error", err)
		return
	}
	if !won {
		// Another evaluator (often this process, one tick ago) owns today.
		metrics.ClaimsTotal.WithLabelValues("lost").Inc()
		s.logger.Debug("claim lost", "department", sched.DepartmentName)
		return
	}

	metrics.ClaimsTotal.WithLabelValues("won").Inc()
	s.executor.Execute(ctx, sched, cfg, loc, now)
}
