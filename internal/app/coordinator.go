// Package app wires the domain together: task and event operations,
// validation, due-date inference, completion transitions and the
// notification fan-out.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
	"github.com/bengol30/patifon-events-management-sub000/internal/schedule"
)

type Config struct {
	// Base URLs for the task/event pages linked from notifications.
	TaskURLBase  string
	EventURLBase string
}

type Coordinator struct {
	cfg Config

	tasks      model.TaskRepository
	events     model.EventRepository
	volunteers model.VolunteerRepository

	dispatcher *notify.Dispatcher
	log        lgr.L

	// injected in tests
	now func() time.Time
}

func NewCoordinator(
	cfg Config,
	tasks model.TaskRepository,
	events model.EventRepository,
	volunteers model.VolunteerRepository,
	dispatcher *notify.Dispatcher,
	log lgr.L,
) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		tasks:      tasks,
		events:     events,
		volunteers: volunteers,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// CreateTask validates, fills derived fields, persists and fans out
// notifications to the assignees. Validation failures abort before any
// write; notification delivery is best effort and never fails the
// creation.
func (c *Coordinator) CreateTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	task.Assignees = model.SanitizeAssignees(task.Assignees)
	applyLegacyAssignee(task)

	if task.Status == "" {
		task.Status = model.TaskStatusTODO
	}
	task.RemainingCompletions = task.RequiredCompletions

	event := c.eventOf(ctx, task)

	if task.DueDate == "" {
		var anchor time.Time
		if event != nil {
			anchor = event.StartTime
		}
		due := schedule.InferDueDate(task.Title, task.Description, anchor, c.now())
		task.DueDate = due.Format(model.DueDateLayout)
	}

	task.CreatedAt = c.now()
	task.UpdatedAt = task.CreatedAt
	if err := c.tasks.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	c.notifyAssignees(task, event)
	return nil
}

// UpdateTask validates and persists an edited task, re-normalizing the
// assignee list and notifying anyone on it.
func (c *Coordinator) UpdateTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	task.Assignees = model.SanitizeAssignees(task.Assignees)
	applyLegacyAssignee(task)
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	c.notifyAssignees(task, c.eventOf(ctx, task))
	return nil
}

// LoadTask fetches a task and runs the read-time repair pass: clamped
// counters, a done status with completions remaining, and a missing due
// date are fixed and written back exactly once. A failed write-back is
// logged, never surfaced, and the repaired view is still returned.
func (c *Coordinator) LoadTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := c.tasks.FetchTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if rep := model.Repair(*task); rep.Changed {
		task.Status = rep.Status
		task.RemainingCompletions = rep.Remaining
		changed = true
	}

	if task.DueDate == "" {
		var anchor time.Time
		if event := c.eventOf(ctx, task); event != nil {
			anchor = event.StartTime
		}
		due := schedule.InferDueDate(task.Title, task.Description, anchor, c.now())
		task.DueDate = due.Format(model.DueDateLayout)
		changed = true
	}

	if changed {
		if err := c.tasks.UpdateTask(ctx, task); err != nil {
			c.log.Logf("[WARN] could not persist repair of task %s: %v", id, err)
		}
	}
	return task, nil
}

// CompleteTask applies one "mark complete" action through the
// completion state machine.
func (c *Coordinator) CompleteTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := c.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	next := model.NextCompletion(*task)
	task.Status = next.Status
	task.RemainingCompletions = next.Remaining
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	return task, nil
}

// SetStatus handles direct status changes. A move toward done on a
// multi-completion task goes through the completion machine; everything
// else passes through unchanged.
func (c *Coordinator) SetStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error) {
	task, err := c.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == model.TaskStatusDone && task.RequiredCompletions > 1 {
		return c.CompleteTask(ctx, id)
	}

	task.Status = status
	if status == model.TaskStatusDone {
		task.RemainingCompletions = 0
	}
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	return task, nil
}

// SetRequiredCompletions restarts the completion cycle with a new
// required count.
func (c *Coordinator) SetRequiredCompletions(ctx context.Context, id string, required int) (*model.Task, error) {
	task, err := c.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := model.ResetCompletions(*task, required)
	if err != nil {
		return nil, err
	}
	task.RequiredCompletions = required
	task.RemainingCompletions = next.Remaining
	task.Status = next.Status
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	return task, nil
}

// ApproveVolunteerCompletion is the external-approval decrement path
// for volunteer tasks.
func (c *Coordinator) ApproveVolunteerCompletion(ctx context.Context, id string) (*model.Task, error) {
	task, err := c.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	next := model.ApproveCompletion(*task)
	task.Status = next.Status
	task.RemainingCompletions = next.Remaining
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	return task, nil
}

// ToggleAssignee adds or removes one assignee and notifies them when
// they were added.
func (c *Coordinator) ToggleAssignee(ctx context.Context, id string, candidate model.Assignee) (*model.Task, error) {
	task, err := c.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	before := len(task.Assignees)
	task.Assignees = model.SanitizeAssignees(model.ToggleAssignee(task.Assignees, candidate))
	applyLegacyAssignee(task)
	task.UpdatedAt = c.now()

	if err := c.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	if len(task.Assignees) > before {
		c.dispatcher.Enqueue([]model.Assignee{candidate}, c.messageContext(task, c.eventOf(ctx, task)))
	}
	return task, nil
}

// VisibleTasks returns the event's tasks with paused sets suppressed.
// Pausing hides, it never mutates.
func (c *Coordinator) VisibleTasks(ctx context.Context, eventID string) ([]model.Task, error) {
	event, err := c.events.FetchEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tasks, err := c.tasks.FilterTasks(ctx, model.TaskFilter{EventID: eventID})
	if err != nil {
		return nil, err
	}

	visible := tasks[:0]
	for _, t := range tasks {
		if t.IsVolunteerTask && event.VolunteerTasksPaused {
			continue
		}
		if !t.IsVolunteerTask && event.TeamTasksPaused {
			continue
		}
		visible = append(visible, t)
	}
	return visible, nil
}

// InviteVolunteer registers a volunteer for an event.
func (c *Coordinator) InviteVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if volunteer.Name == "" {
		return model.ErrEmptyVolunteerName
	}
	volunteer.CreatedAt = c.now()
	if err := c.volunteers.CreateVolunteer(ctx, volunteer); err != nil {
		return fmt.Errorf("could not create volunteer: %w", err)
	}
	return nil
}

// BroadcastToRoster queues one message for every roster entry through
// the shared dispatcher, under the same global rate limit as every
// other notification.
func (c *Coordinator) BroadcastToRoster(ctx context.Context, eventID string, entries []model.Volunteer, text string) error {
	event, err := c.events.FetchEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	assignees := make([]model.Assignee, 0, len(entries))
	for _, v := range entries {
		assignees = append(assignees, model.Assignee{
			Name:   v.Name,
			UserID: v.UserID,
			Email:  v.Email,
			Phone:  v.Phone,
		})
	}

	mc := notify.MessageContext{
		Task:     model.Task{ID: "broadcast-" + eventID, EventID: eventID},
		Event:    event,
		EventURL: c.eventURL(eventID),
		Override: text,
	}
	c.dispatcher.Enqueue(assignees, mc)
	return nil
}

// AdvanceEventOccurrence rolls a recurring event's start time forward
// to its next occurrence and persists it.
func (c *Coordinator) AdvanceEventOccurrence(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := c.events.FetchEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	advanced := schedule.NextOccurrence(event.StartTime, event.Recurrence, event.RecurrenceEnd, c.now())
	if advanced.Equal(event.StartTime) {
		return event, nil
	}
	event.StartTime = advanced
	event.UpdatedAt = c.now()

	if err := c.events.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("could not update event: %w", err)
	}
	return event, nil
}

// HydrateEventTasks runs the read-time normalization over every task
// of an event: completion repairs and missing due dates are computed
// and written back once per task. Invoked when the data layer reports
// a change on the event.
func (c *Coordinator) HydrateEventTasks(ctx context.Context, eventID string) {
	tasks, err := c.tasks.FilterTasks(ctx, model.TaskFilter{EventID: eventID})
	if err != nil {
		c.log.Logf("[WARN] could not fetch tasks of event %s for hydration: %v", eventID, err)
		return
	}
	for _, t := range tasks {
		needsRepair := model.Repair(t).Changed || t.DueDate == ""
		if !needsRepair {
			continue
		}
		if _, err := c.LoadTask(ctx, t.ID); err != nil {
			c.log.Logf("[WARN] could not hydrate task %s: %v", t.ID, err)
		}
	}
}

func (c *Coordinator) notifyAssignees(task *model.Task, event *model.Event) {
	if len(task.Assignees) == 0 {
		return
	}
	c.dispatcher.Enqueue(task.Assignees, c.messageContext(task, event))
}

func (c *Coordinator) messageContext(task *model.Task, event *model.Event) notify.MessageContext {
	return notify.MessageContext{
		Task:     *task,
		Event:    event,
		TaskURL:  c.taskURL(task.ID),
		EventURL: c.eventURL(task.EventID),
	}
}

// eventOf resolves the task's event; a miss is fine, the task just has
// no anchor.
func (c *Coordinator) eventOf(ctx context.Context, task *model.Task) *model.Event {
	if task.EventID == "" {
		return nil
	}
	event, err := c.events.FetchEventByID(ctx, task.EventID)
	if err != nil {
		c.log.Logf("[DEBUG] no event %s for task %s: %v", task.EventID, task.ID, err)
		return nil
	}
	return event
}

func (c *Coordinator) taskURL(id string) string {
	if c.cfg.TaskURLBase == "" || id == "" {
		return ""
	}
	return c.cfg.TaskURLBase + "/" + id
}

func (c *Coordinator) eventURL(id string) string {
	if c.cfg.EventURLBase == "" || id == "" {
		return ""
	}
	return c.cfg.EventURLBase + "/" + id
}

func applyLegacyAssignee(task *model.Task) {
	if len(task.Assignees) == 0 {
		task.Assignee = ""
		task.AssigneeID = ""
		return
	}
	first := task.Assignees[0]
	task.Assignee = first.Name
	task.AssigneeID = first.UserID
}
