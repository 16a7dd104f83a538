// seed inserts demo departments, projects, tasks and a notification setup
// into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/matkarim/taskdesk/internal/infrastructure/postgres"
)

type deptSpec struct {
	name     string
	days     string // Postgres int[] literal
	hour     int
	minute   int
	enabled  bool
	projects []projectSpec
}

type projectSpec struct {
	name  string
	tasks []taskSpec
}

type taskSpec struct {
	title    string
	status   string
	priority string
	dueIn    time.Duration // 0 = no due date
}

var depts = []deptSpec{
	{
		name: "Engineering", days: "{1,2,3,4,5}", hour: 9, minute: 0, enabled: true,
		projects: []projectSpec{
			{name: "Platform", tasks: []taskSpec{
				{"Upgrade pgx to v5.7", "open", "high", 48 * time.Hour},
				{"Rotate JWT signing key", "in_progress", "high", 24 * time.Hour},
				{"Archive stale feature flags", "open", "low", 0},
				{"Fix flaky pipeline on main", "done", "medium", 0},
			}},
			{name: "Mobile", tasks: []taskSpec{
				{"Push notification opt-in screen", "open", "medium", 72 * time.Hour},
				{"Crash on cold start (Android 15)", "in_progress", "high", -12 * time.Hour},
			}},
		},
	},
	{
		name: "Sales", days: "{1,3,5}", hour: 8, minute: 30, enabled: true,
		projects: []projectSpec{
			{name: "Q3 Pipeline", tasks: []taskSpec{
				{"Follow up with Acme renewal", "open", "high", -24 * time.Hour},
				{"Prepare demo environment", "open", "medium", 24 * time.Hour},
				{"Send updated pricing sheet", "done", "low", 0},
			}},
		},
	},
	{
		// Enabled settings but disabled schedule: never fires.
		name: "Support", days: "{2,4}", hour: 18, minute: 0, enabled: false,
		projects: []projectSpec{
			{name: "Ticket Backlog", tasks: []taskSpec{
				{"Triage weekend queue", "open", "medium", 0},
			}},
		},
	},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	var deptCount, projectCount, taskCount int

	for _, d := range depts {
		var deptID string
		err := pool.QueryRow(ctx, `
			INSERT INTO departments (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			d.name,
		).Scan(&deptID)
		if err != nil {
			log.Fatalf("upsert department %s: %v", d.name, err)
		}
		deptCount++

		_, err = pool.Exec(ctx, `
			INSERT INTO department_schedules (department_id, enabled, days_of_week, hour, minute)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (department_id) DO UPDATE SET
				enabled = EXCLUDED.enabled,
				days_of_week = EXCLUDED.days_of_week,
				hour = EXCLUDED.hour,
				minute = EXCLUDED.minute,
				updated_at = NOW()`,
			deptID, d.enabled, d.days, d.hour, d.minute,
		)
		if err != nil {
			log.Fatalf("upsert schedule for %s: %v", d.name, err)
		}

		for _, p := range d.projects {
			var projectID string
			err := pool.QueryRow(ctx, `
				INSERT INTO projects (department_id, name)
				VALUES ($1, $2)
				ON CONFLICT (department_id, name) DO UPDATE SET updated_at = NOW()
				RETURNING id`,
				deptID, p.name,
			).Scan(&projectID)
			if err != nil {
				log.Fatalf("upsert project %s: %v", p.name, err)
			}
			projectCount++

			for _, t := range p.tasks {
				var due *time.Time
				if t.dueIn != 0 {
					d := time.Now().Add(t.dueIn)
					due = &d
				}
				_, err := pool.Exec(ctx, `
					INSERT INTO tasks (project_id, department_id, title, status, priority, due_date)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT DO NOTHING`,
					projectID, deptID, t.title, t.status, t.priority, due,
				)
				if err != nil {
					log.Fatalf("insert task %q: %v", t.title, err)
				}
				taskCount++
			}
		}
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO notification_settings (id, enabled, recipients, time_zone, send_when_empty)
		VALUES (1, true, $1, 'Asia/Kolkata', false)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			recipients = EXCLUDED.recipients,
			time_zone = EXCLUDED.time_zone,
			send_when_empty = EXCLUDED.send_when_empty,
			updated_at = NOW()`,
		"{leads@taskdesk.local}",
	)
	if err != nil {
		log.Fatalf("upsert notification settings: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Departments: %d\n", deptCount)
	fmt.Printf("  Projects:    %d\n", projectCount)
	fmt.Printf("  Tasks:       %d\n", taskCount)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Engineering fires weekdays 09:00, Sales Mon/Wed/Fri 08:30 (Asia/Kolkata).")
	fmt.Println("  Support has a schedule but it is disabled, so it never fires.")
	fmt.Println()
	fmt.Println("  Nudge a schedule to fire on the next matching minute:")
	fmt.Println()
	fmt.Println("    curl -s -X PUT http://localhost:8080/notifications/schedules/DEPT_ID \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"enabled\":true,\"daysOfWeek\":[0,1,2,3,4,5,6],\"timeOfDay\":\"HH:MM\"}'")
	fmt.Println()
	fmt.Println("  Then check the audit trail:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/notifications/deliveries -H \"Authorization: Bearer $JWT\"")
}
