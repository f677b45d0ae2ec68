package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	Location    string    `bson:"location,omitempty"`
	StartTime   time.Time `bson:"startTime,omitempty"`

	Recurrence    Recurrence `bson:"recurrence,omitempty"`
	RecurrenceEnd time.Time  `bson:"recurrenceEndDate,omitempty"`

	// Pause flags hide the respective task sets from external
	// consumers without touching the tasks themselves.
	VolunteerTasksPaused bool `bson:"volunteerTasksPaused,omitempty"`
	TeamTasksPaused      bool `bson:"teamTasksPaused,omitempty"`

	CreatedBy string    `bson:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

func NewEvent(title string, startTime time.Time, createdBy string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Title:     title,
		StartTime: startTime,
		CreatedBy: createdBy,
	}
}

type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	FetchEventByID(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) error
	RemoveEvent(ctx context.Context, id string) error
}
