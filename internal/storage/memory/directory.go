package memory

import (
	"context"

	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
)

// UserDirectory adapts the store to the resolver's user lookups.
func (s *Store) UserDirectory() notify.UserDirectory {
	return userDirectory{s}
}

// VolunteerDirectory adapts the store to the resolver's volunteer
// lookups.
func (s *Store) VolunteerDirectory() notify.VolunteerDirectory {
	return s
}

type userDirectory struct{ s *Store }

func (d userDirectory) PhoneByUserID(ctx context.Context, userID string) (string, error) {
	return d.s.PhoneByUserID(ctx, userID)
}

func (d userDirectory) PhoneByEmail(ctx context.Context, email string) (string, error) {
	return d.s.PhoneByEmailUser(ctx, email)
}
