package memory

import (
	"context"
	"strings"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

func (s *Store) FetchUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) FetchUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(strings.TrimSpace(u.Email)) == email {
			return &u, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	s.users[user.ID] = *user
	return nil
}

// PhoneByUserID implements notify.UserDirectory.
func (s *Store) PhoneByUserID(ctx context.Context, userID string) (string, error) {
	u, err := s.FetchUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Phone, nil
}

// PhoneByEmailUser implements the user-directory email lookup. Named
// apart from the volunteer lookup because Store carries both.
func (s *Store) PhoneByEmailUser(ctx context.Context, email string) (string, error) {
	u, err := s.FetchUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Phone, nil
}
