package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          string     `bson:"_id"`
	EventID     string     `bson:"eventId,omitempty"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	Status      TaskStatus `bson:"status"`
	Priority    string     `bson:"priority,omitempty"`

	// DueDate is a naive local date-time in DueDateLayout; empty means
	// not set yet and will be inferred on first load.
	DueDate string `bson:"dueDate,omitempty"`

	RequiredCompletions  int `bson:"requiredCompletions"`
	RemainingCompletions int `bson:"remainingCompletions"`

	Assignees []Assignee `bson:"assignees,omitempty"`
	// Legacy scalar fields, mirror the first sanitized assignee.
	Assignee   string `bson:"assignee,omitempty"`
	AssigneeID string `bson:"assigneeId,omitempty"`

	IsVolunteerTask bool     `bson:"isVolunteerTask,omitempty"`
	VolunteerHours  *float64 `bson:"volunteerHours,omitempty"`

	LastMessageTime time.Time `bson:"lastMessageTime,omitempty"`
	LastMessageBy   string    `bson:"lastMessageBy,omitempty"`
	ReadBy          []string  `bson:"readBy,omitempty"`

	CreatedBy string    `bson:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

// DueDateLayout is the storage format for task due dates: naive local
// time, no timezone suffix.
const DueDateLayout = "2006-01-02T15:04"

func NewTask(eventID string, title string, createdBy string) *Task {
	return &Task{
		ID:                   uuid.NewString(),
		EventID:              eventID,
		Title:                title,
		Status:               TaskStatusTODO,
		RequiredCompletions:  1,
		RemainingCompletions: 1,
		CreatedBy:            createdBy,
	}
}

type TaskStatus string

const (
	TaskStatusTODO       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusStuck      TaskStatus = "stuck"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrEmptyTaskTitle         = errors.New("task title is required")
	ErrVolunteerHoursRequired = errors.New("volunteer hours are required for a volunteer task")
	ErrInvalidCompletionCount = errors.New("completion count must be at least 1")
)

// Validate checks a task before any write happens. Validation failures
// abort the triggering action synchronously.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.RequiredCompletions < 1 {
		return ErrInvalidCompletionCount
	}
	if t.IsVolunteerTask && (t.VolunteerHours == nil || *t.VolunteerHours <= 0) {
		return ErrVolunteerHoursRequired
	}
	return nil
}

// DueDateTime parses the stored due date. ok is false when the due date
// is absent or malformed.
func (t *Task) DueDateTime() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DueDateLayout, t.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

type TaskFilter struct {
	EventID       string
	Status        TaskStatus
	VolunteerOnly bool
}

type TaskRepository interface {
	FetchTaskByID(ctx context.Context, id string) (*Task, error)
	FilterTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	CreateTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, task *Task) error
	RemoveTask(ctx context.Context, id string) error
	// StampMessage records last-message metadata without touching the
	// rest of the document, so it cannot race a concurrent task write.
	StampMessage(ctx context.Context, id string, at time.Time, by string) error
}
