package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

func (s *Store) FetchVolunteersByEvent(ctx context.Context, eventID string) ([]model.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Volunteer
	for _, v := range s.volunteers {
		if eventID == "" || v.EventID == eventID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	s.mu.Lock()
	s.volunteers[volunteer.ID] = *volunteer
	s.mu.Unlock()
	s.notify(volunteer.EventID)
	return nil
}

func (s *Store) UpdateVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	s.mu.Lock()
	if _, ok := s.volunteers[volunteer.ID]; !ok {
		s.mu.Unlock()
		return model.ErrVolunteerNotFound
	}
	s.volunteers[volunteer.ID] = *volunteer
	s.mu.Unlock()
	s.notify(volunteer.EventID)
	return nil
}

func (s *Store) RemoveVolunteer(ctx context.Context, id string) error {
	s.mu.Lock()
	v, ok := s.volunteers[id]
	if !ok {
		s.mu.Unlock()
		return model.ErrVolunteerNotFound
	}
	delete(s.volunteers, id)
	s.mu.Unlock()
	s.notify(v.EventID)
	return nil
}

// AddGeneralVolunteer seeds the cross-event volunteer directory.
func (s *Store) AddGeneralVolunteer(v model.Volunteer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generalVolunteers[v.ID] = v
}

// PhoneByEmail implements notify.VolunteerDirectory over the event
// volunteer records; an empty eventID searches all events.
func (s *Store) PhoneByEmail(ctx context.Context, eventID, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, v := range s.volunteers {
		if eventID != "" && v.EventID != eventID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(v.Email)) == email && v.Phone != "" {
			return v.Phone, nil
		}
	}
	return "", model.ErrVolunteerNotFound
}

func (s *Store) GeneralPhoneByEmail(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, v := range s.generalVolunteers {
		if strings.ToLower(strings.TrimSpace(v.Email)) == email && v.Phone != "" {
			return v.Phone, nil
		}
	}
	return "", model.ErrVolunteerNotFound
}
