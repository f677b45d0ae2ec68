// Package memory is a map-backed implementation of every repository
// interface. It backs unit tests and the coordinator's dry-run mode.
package memory

import (
	"sync"
	"time"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/roster"
)

type Store struct {
	mu sync.Mutex

	tasks      map[string]model.Task
	events     map[string]model.Event
	volunteers map[string]model.Volunteer
	// generalVolunteers is the cross-event volunteer directory.
	generalVolunteers map[string]model.Volunteer
	users             map[string]model.User
	settings          *model.AppSettings

	lastSendAt time.Time

	subscribers []chan roster.Change
}

func New() *Store {
	return &Store{
		tasks:             make(map[string]model.Task),
		events:            make(map[string]model.Event),
		volunteers:        make(map[string]model.Volunteer),
		generalVolunteers: make(map[string]model.Volunteer),
		users:             make(map[string]model.User),
	}
}

// Subscribe returns a channel receiving a change notification per
// task/volunteer write, keyed by event. Mirrors the document store's
// reactive subscriptions.
func (s *Store) Subscribe() <-chan roster.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan roster.Change, 64)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// notify must be called without the lock held.
func (s *Store) notify(eventID string) {
	s.mu.Lock()
	subs := make([]chan roster.Change, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- roster.Change{EventID: eventID}:
		default: // slow subscriber, drop
		}
	}
}
