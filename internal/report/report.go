package report

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/matkarim/taskdesk/internal/domain"
	"github.com/matkarim/taskdesk/internal/repository"
)

// Payload is the rendered report for one department. TaskCount drives the
// send_when_empty decision upstream.
type Payload struct {
	HTML      string
	TaskCount int
}

// Generator builds a department's report content. Failures propagate to the
// executor as a failed delivery.
type Generator interface {
	Generate(ctx context.Context, departmentID, departmentName string, asOf time.Time) (*Payload, error)
}

// TaskReportGenerator renders the open/overdue task list for a department.
type TaskReportGenerator struct {
	tasks repository.TaskRepository
}

func NewTaskReportGenerator(tasks repository.TaskRepository) *TaskReportGenerator {
	return &TaskReportGenerator{tasks: tasks}
}

var reportTmpl = template.Must(template.New("report").Parse(`<h2>{{.Department}} open tasks as of {{.AsOf}}</h2>
{{if .Rows}}<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Task</th><th>Status</th><th>Priority</th><th>Assignee</th><th>Due</th></tr>
{{range .Rows}}<tr{{if .Overdue}} style="background:#fdd"{{end}}>
<td>{{.Title}}</td><td>{{.Status}}</td><td>{{.Priority}}</td><td>{{.Assignee}}</td><td>{{.Due}}</td>
</tr>
{{end}}</table>
<p>{{len .Rows}} open task(s), {{.OverdueCount}} overdue.</p>
{{else}}<p>No open tasks.</p>
{{end}}`))

type reportRow struct {
	Title    string
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Assignee string
	Due      string
	Overdue  bool
}

type reportData struct {
	Department   string
	AsOf         string
	Rows         []reportRow
	OverdueCount int
}

func (g *TaskReportGenerator) Generate(ctx context.Context, departmentID, departmentName string, asOf time.Time) (*Payload, error) {
	tasks, err := g.tasks.ListOpenByDepartment(ctx, departmentID, asOf)
	if err != nil {
		return nil, fmt.Errorf("load open tasks: %w", err)
	}

	data := reportData{
		Department: departmentName,
		AsOf:       asOf.Format("Mon, 2 Jan 2006"),
	}
	for _, t := range tasks {
		row := reportRow{
			Title:    t.Title,
			Status:   t.Status,
			Priority: t.Priority,
			Assignee: "-",
			Due:      "-",
		}
		if t.Assignee != nil {
			row.Assignee = *t.Assignee
		}
		if t.DueAt != nil {
			row.Due = t.DueAt.Format("2 Jan 2006")
			row.Overdue = t.DueAt.Before(asOf)
		}
		if row.Overdue {
			data.OverdueCount++
		}
		data.Rows = append(data.Rows, row)
	}

	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return &Payload{HTML: sb.String(), TaskCount: len(tasks)}, nil
}
