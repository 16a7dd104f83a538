package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/email"
	"github.com/matkarim/taskdesk/internal/metrics"
	"github.com/matkarim/taskdesk/internal/report"
	"github.com/matkarim/taskdesk/internal/repository"
)

// Executor runs one claimed schedule: build the report, deliver it, record
// the audit row. It is only ever invoked after a won claim, so two executions
// for the same schedule and day cannot overlap.
type Executor struct {
	generator  report.Generator
	sender     email.Sender
	deliveries repository.DeliveryRepository
	schedules  repository.ScheduleRepository
	logger     *slog.Logger
}

func NewExecutor(
	generator report.Generator,
	sender email.Sender,
	deliveries repository.DeliveryRepository,
	schedules repository.ScheduleRepository,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		generator:  generator,
		sender:     sender,
		deliveries: deliveries,
		schedules:  schedules,
		logger:     logger.With("component", "executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, s *domain.DepartmentSchedule, cfg *domain.NotificationSettings, loc *time.Location, now time.Time) {
	start := time.Now()

	payload, err := e.generator.Generate(ctx, s.DepartmentID, s.DepartmentName, now)
	if err != nil {
		e.fail(ctx, s, "generate report", err)
		return
	}

	if payload.TaskCount == 0 && !cfg.SendWhenEmpty {
		// Skipping an empty report is a successful evaluation, not a failure:
		// the claim stays and the day is spent.
		metrics.ReportsTotal.WithLabelValues("skipped_empty").Inc()
		e.logger.Info("empty report skipped", "department", s.DepartmentName)
		return
	}

	subject := fmt.Sprintf("%s task report, %s", s.DepartmentName, now.In(loc).Format("Mon 2 Jan 2006"))

	deliveryID, err := e.sender.Send(ctx, cfg.Recipients, subject, payload.HTML)
	if err != nil {
		e.fail(ctx, s, "send report", err)
		return
	}

	// The email is out; a failed audit write must not release the claim or
	// the next occurrence would send a duplicate.
	if _, err := e.deliveries.Record(ctx, &domain.ReportDelivery{
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		Recipients:     cfg.Recipients,
		Subject:        subject,
		DeliveryID:     deliveryID,
		TaskCount:      payload.TaskCount,
	}); err != nil {
		e.logger.Error("record delivery", "department", s.DepartmentName, "delivery_id", deliveryID, "error", err)
	}

	metrics.ReportsTotal.WithLabelValues("delivered").Inc()
	metrics.ReportDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("report delivered",
		"department", s.DepartmentName,
		"recipients", len(cfg.Recipients),
		"tasks", payload.TaskCount,
		"delivery_id", deliveryID,
	)
}

// fail releases the claim so the schedule's next natural occurrence can try
// again. There is no immediate retry: the evaluator still requires an exact
// day/time match, so fail-closed-to-next-slot beats risking a duplicate.
func (e *Executor) fail(ctx context.Context, s *domain.DepartmentSchedule, stage string, err error) {
	metrics.ReportsTotal.WithLabelValues("failed").Inc()
	e.logger.Error(stage, "department", s.DepartmentName, "error", err)

	if rerr := e.schedules.Release(ctx, s.ID); rerr != nil {
		// The claim stays set; the day is burned. At-most-once holds.
		e.logger.Error("release claim", "department", s.DepartmentName, "error", rerr)
	}
}
