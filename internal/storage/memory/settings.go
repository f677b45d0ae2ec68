package memory

import (
	"context"
	"time"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

func (s *Store) FetchSettings(ctx context.Context) (*model.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, model.ErrSettingsNotFound
	}
	cp := *s.settings
	return &cp, nil
}

// PutSettings seeds the settings document.
func (s *Store) PutSettings(settings model.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
}

// LastSendAt implements notify.TokenStore.
func (s *Store) LastSendAt(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSendAt, nil
}

// ClaimSendAt implements notify.TokenStore with the same compare-and-
// set contract as the document store.
func (s *Store) ClaimSendAt(ctx context.Context, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastSendAt.Equal(prev) {
		return false, nil
	}
	s.lastSendAt = next
	return true, nil
}

// SetLastSendAt seeds the rate token. Test helper.
func (s *Store) SetLastSendAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSendAt = t
}
