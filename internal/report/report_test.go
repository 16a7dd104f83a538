package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/report"
	"github.com/matkarim/taskdesk/internal/repository"
)

type fakeTaskRepo struct {
	open func(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Task, error)
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) { return t, nil }

func (r *fakeTaskRepo) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (r *fakeTaskRepo) List(context.Context, repository.ListTasksInput) ([]*domain.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) Update(context.Context, string, repository.UpdateTaskInput) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (r *fakeTaskRepo) Delete(context.Context, string) error { return nil }

func (r *fakeTaskRepo) ListOpenByDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Task, error) {
	return r.open(ctx, departmentID, asOf)
}

func TestGenerate_RendersTasksAndCountsOverdue(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	past := asOf.Add(-48 * time.Hour)
	future := asOf.Add(48 * time.Hour)
	assignee := "dev@co.com"

	repo := &fakeTaskRepo{
		open: func(_ context.Context, departmentID string, _ time.Time) ([]*domain.Task, error) {
			if departmentID != "dept-1" {
				t.Errorf("queried department %q, want dept-1", departmentID)
			}
			return []*domain.Task{
				{Title: "Rotate keys", Status: domain.TaskOpen, Priority: domain.PriorityHigh, DueAt: &past, Assignee: &assignee},
				{Title: "Write runbook", Status: domain.TaskInProgress, Priority: domain.PriorityLow, DueAt: &future},
				{Title: "No due date", Status: domain.TaskOpen, Priority: domain.PriorityMedium},
			}, nil
		},
	}

	p, err := report.NewTaskReportGenerator(repo).Generate(context.Background(), "dept-1", "Engineering", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.TaskCount != 3 {
		t.Errorf("TaskCount = %d, want 3", p.TaskCount)
	}
	for _, want := range []string{"Engineering", "Rotate keys", "Write runbook", "No due date", "dev@co.com", "1 overdue"} {
		if !strings.Contains(p.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestGenerate_EmptyDepartment(t *testing.T) {
	repo := &fakeTaskRepo{
		open: func(context.Context, string, time.Time) ([]*domain.Task, error) { return nil, nil },
	}

	p, err := report.NewTaskReportGenerator(repo).Generate(context.Background(), "dept-1", "Sales", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TaskCount != 0 {
		t.Errorf("TaskCount = %d, want 0", p.TaskCount)
	}
	if !strings.Contains(p.HTML, "No open tasks") {
		t.Errorf("empty report HTML = %q", p.HTML)
	}
}

func TestGenerate_EscapesTaskTitles(t *testing.T) {
	title := `<script>alert("x")</script>`
	repo := &fakeTaskRepo{
		open: func(context.Context, string, time.Time) ([]*domain.Task, error) {
			return []*domain.Task{{Title: title, Status: domain.TaskOpen, Priority: domain.PriorityLow}}, nil
		},
	}

	p, err := report.NewTaskReportGenerator(repo).Generate(context.Background(), "dept-1", "Eng", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(p.HTML, "<script>") {
		t.Error("task title not escaped")
	}
}

func TestGenerate_RepoErrorPropagates(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &fakeTaskRepo{
		open: func(context.Context, string, time.Time) ([]*domain.Task, error) { return nil, dbErr },
	}

	_, err := report.NewTaskReportGenerator(repo).Generate(context.Background(), "dept-1", "Eng", time.Now())
	if !errors.Is(err, dbErr) {
		t.Errorf("got %v, want wrapped dbErr", err)
	}
}
