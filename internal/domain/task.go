package domain

import (
	"errors"
	"time"
)

var (
	ErrDepartmentNotFound     = errors.New("department not found")
	ErrDepartmentNameConflict = errors.New("department with this name already exists")
	ErrProjectNotFound        = errors.New("project not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrInvalidStatus          = errors.New("invalid task status")
	ErrInvalidCursor          = errors.New("invalid pagination cursor")
)

type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Project struct {
	ID           string
	DepartmentID string
	Name         string
	Description  *string
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Task struct {
	ID           string
	ProjectID    string
	DepartmentID string
	Title        string
	Status       TaskStatus
	Priority     TaskPriority
	Assignee     *string // nil means unassigned
	DueAt        *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
