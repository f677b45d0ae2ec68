package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Volunteer is a registration record scoped to an event. The unified
// roster built by internal/roster merges these with volunteer-task
// assignees; registrations are the authoritative source.
type Volunteer struct {
	ID      string  `bson:"_id"`
	EventID string  `bson:"eventId,omitempty"`
	Name    string  `bson:"name"`
	UserID  string  `bson:"userId,omitempty"`
	Email   string  `bson:"email,omitempty"`
	Phone   string  `bson:"phone,omitempty"`
	Hours   float64 `bson:"hours,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty"`
}

func NewVolunteer(eventID string, name string) *Volunteer {
	return &Volunteer{
		ID:      uuid.NewString(),
		EventID: eventID,
		Name:    name,
	}
}

var (
	ErrVolunteerNotFound  = errors.New("volunteer not found")
	ErrEmptyVolunteerName = errors.New("volunteer name is required")
)

type VolunteerRepository interface {
	FetchVolunteersByEvent(ctx context.Context, eventID string) ([]Volunteer, error)
	CreateVolunteer(ctx context.Context, volunteer *Volunteer) error
	UpdateVolunteer(ctx context.Context, volunteer *Volunteer) error
	RemoveVolunteer(ctx context.Context, id string) error
}
