package memory

import (
	"context"
	"sort"
	"time"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

func (s *Store) FetchTaskByID(ctx context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrTaskNotFound
	}
	return &t, nil
}

func (s *Store) FilterTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, t := range s.tasks {
		if filter.EventID != "" && t.EventID != filter.EventID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.VolunteerOnly && !t.IsVolunteerTask && t.VolunteerHours == nil {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	s.tasks[task.ID] = *task
	s.mu.Unlock()
	s.notify(task.EventID)
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	if _, ok := s.tasks[task.ID]; !ok {
		s.mu.Unlock()
		return model.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	s.mu.Unlock()
	s.notify(task.EventID)
	return nil
}

func (s *Store) RemoveTask(ctx context.Context, id string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.ErrTaskNotFound
	}
	delete(s.tasks, id)
	s.mu.Unlock()
	s.notify(t.EventID)
	return nil
}

func (s *Store) StampMessage(ctx context.Context, id string, at time.Time, by string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.ErrTaskNotFound
	}
	t.LastMessageTime = at
	t.LastMessageBy = by
	s.tasks[id] = t
	s.mu.Unlock()
	s.notify(t.EventID)
	return nil
}

// TaskCount reports the number of stored tasks. Test helper.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
