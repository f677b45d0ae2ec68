package app_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengol30/patifon-events-management-sub000/internal/app"
	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
	"github.com/bengol30/patifon-events-management-sub000/internal/storage/memory"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string // recipient + "|" + body
}

func (s *recordingSender) Send(ctx context.Context, recipient, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recipient+"|"+message)
	return nil
}

func (s *recordingSender) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type fixture struct {
	store       *memory.Store
	sender      *recordingSender
	dispatcher  *notify.Dispatcher
	coordinator *app.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := lgr.New()
	store := memory.New()
	sender := &recordingSender{}

	gate := notify.NewRateGate(store, log)
	gate.Interval = 0 // no pacing in tests

	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	dispatcher := notify.NewDispatcher(gate, resolver, sender, store, log)

	coordinator := app.NewCoordinator(app.Config{
		TaskURLBase:  "https://app.example/tasks",
		EventURLBase: "https://app.example/events",
	}, store, store, store, dispatcher, log)

	return &fixture{store: store, sender: sender, dispatcher: dispatcher, coordinator: coordinator}
}

func TestCreateTaskVolunteerWithoutHoursFails(t *testing.T) {
	f := newFixture(t)

	task := model.NewTask("e1", "shift", "u1")
	task.IsVolunteerTask = true

	err := f.coordinator.CreateTask(context.Background(), task)
	assert.ErrorIs(t, err, model.ErrVolunteerHoursRequired)
	assert.Equal(t, 0, f.store.TaskCount(), "validation aborts before any write")
}

func TestCreateTaskInfersAndPersistsDueDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	event := model.NewEvent("פסטיבל", time.Now().Add(10*24*time.Hour), "u1")
	require.NoError(t, f.store.CreateEvent(ctx, event))

	task := model.NewTask(event.ID, "תזכורת לאירוע", "u1")
	require.NoError(t, f.coordinator.CreateTask(ctx, task))
	require.NotEmpty(t, task.DueDate)

	due, ok := task.DueDateTime()
	require.True(t, ok)
	assert.Equal(t, event.StartTime.Add(-4*time.Hour).Format(model.DueDateLayout), due.Format(model.DueDateLayout))

	// Inference never re-runs once persisted.
	loaded, err := f.coordinator.LoadTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.DueDate, loaded.DueDate)
}

func TestCreateTaskNotifiesAssignees(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := model.NewTask("", "לתלות שלטים", "u1")
	task.Assignees = []model.Assignee{{Name: "Dana", Phone: "0501234567"}}

	require.NoError(t, f.coordinator.CreateTask(ctx, task))
	f.dispatcher.Wait()

	sent := f.sender.all()
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "972501234567@c.us|"))
	assert.Contains(t, sent[0], "לתלות שלטים")

	assert.Equal(t, "Dana", task.Assignee, "legacy scalar mirrors first assignee")

	got, err := f.store.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.LastMessageTime.IsZero(), "delivery stamped on the task")
	assert.Equal(t, "coordinator", got.LastMessageBy)
}

func TestLoadTaskRepairsInconsistentState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Seed inconsistent historical data directly, bypassing the
	// coordinator.
	require.NoError(t, f.store.CreateTask(ctx, &model.Task{
		ID: "t1", Title: "stale", Status: model.TaskStatusDone,
		RequiredCompletions: 3, RemainingCompletions: 2,
		DueDate: "2026-01-01T10:00",
	}))

	loaded, err := f.coordinator.LoadTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, loaded.Status)

	// The fix was written back.
	raw, err := f.store.FetchTaskByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, raw.Status)
}

func TestCompleteTaskSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := model.NewTask("", "multi", "u1")
	task.RequiredCompletions = 3
	task.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, task))

	wantStatus := []model.TaskStatus{model.TaskStatusInProgress, model.TaskStatusInProgress, model.TaskStatusDone}
	wantRemaining := []int{2, 1, 0}
	for i := range wantStatus {
		got, err := f.coordinator.CompleteTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, wantStatus[i], got.Status)
		assert.Equal(t, wantRemaining[i], got.RemainingCompletions)
	}
}

func TestVolunteerCompletionApprovalFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	hours := 2.0
	task := model.NewTask("", "shift", "u1")
	task.RequiredCompletions = 3
	task.IsVolunteerTask = true
	task.VolunteerHours = &hours
	task.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, task))

	got, err := f.coordinator.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, got.Status)
	assert.Equal(t, 3, got.RemainingCompletions, "mark complete does not decrement volunteer tasks")

	for _, want := range []int{2, 1, 0} {
		got, err = f.coordinator.ApproveVolunteerCompletion(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.RemainingCompletions)
	}
	assert.Equal(t, model.TaskStatusDone, got.Status)
}

func TestSetRequiredCompletionsRestartsCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := model.NewTask("", "single", "u1")
	task.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, task))

	_, err := f.coordinator.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	got, err := f.coordinator.SetRequiredCompletions(ctx, task.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RemainingCompletions)
	assert.Equal(t, model.TaskStatusInProgress, got.Status, "done task reopens")

	_, err = f.coordinator.SetRequiredCompletions(ctx, task.ID, 0)
	assert.ErrorIs(t, err, model.ErrInvalidCompletionCount)
}

func TestVisibleTasksHonorsPauseFlags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	event := model.NewEvent("פסטיבל", time.Now().Add(24*time.Hour), "u1")
	event.VolunteerTasksPaused = true
	require.NoError(t, f.store.CreateEvent(ctx, event))

	hours := 1.0
	vt := model.NewTask(event.ID, "shift", "u1")
	vt.IsVolunteerTask = true
	vt.VolunteerHours = &hours
	vt.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, vt))

	tt := model.NewTask(event.ID, "team work", "u1")
	tt.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, tt))

	visible, err := f.coordinator.VisibleTasks(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "team work", visible[0].Title)

	event.VolunteerTasksPaused = false
	event.TeamTasksPaused = true
	require.NoError(t, f.store.UpdateEvent(ctx, event))

	visible, err = f.coordinator.VisibleTasks(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "shift", visible[0].Title)

	event.VolunteerTasksPaused = true
	require.NoError(t, f.store.UpdateEvent(ctx, event))

	visible, err = f.coordinator.VisibleTasks(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Pausing hides, it does not mutate.
	assert.Equal(t, 2, f.store.TaskCount())
}

func TestToggleAssigneeAddAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := model.NewTask("", "toggle", "u1")
	task.DueDate = "2026-01-01T10:00"
	require.NoError(t, f.coordinator.CreateTask(ctx, task))

	dana := model.Assignee{Name: "Dana", Email: "dana@x.com", Phone: "0501234567"}

	got, err := f.coordinator.ToggleAssignee(ctx, task.ID, dana)
	require.NoError(t, err)
	require.Len(t, got.Assignees, 1)
	assert.Equal(t, "Dana", got.Assignee)

	got, err = f.coordinator.ToggleAssignee(ctx, task.ID, dana)
	require.NoError(t, err)
	assert.Empty(t, got.Assignees)
	assert.Empty(t, got.Assignee)

	f.dispatcher.Wait()
	assert.Len(t, f.sender.all(), 1, "only the add notifies")
}

func TestBroadcastToRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	event := model.NewEvent("פסטיבל", time.Now().Add(24*time.Hour), "u1")
	require.NoError(t, f.store.CreateEvent(ctx, event))

	entries := []model.Volunteer{
		{Name: "Alma", Email: "a@x.com", Phone: "0501111111"},
		{Name: "Noa", Email: "noa@x.com", Phone: "0502222222"},
	}
	require.NoError(t, f.coordinator.BroadcastToRoster(ctx, event.ID, entries, "מתחילים בשש"))
	f.dispatcher.Wait()

	sent := f.sender.all()
	require.Len(t, sent, 2)
	for _, s := range sent {
		assert.Contains(t, s, "מתחילים בשש")
	}
}

func TestAdvanceEventOccurrence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	event := model.NewEvent("חוג שבועי", time.Now().AddDate(0, 0, -15), "u1")
	event.Recurrence = model.RecurrenceWeekly
	require.NoError(t, f.store.CreateEvent(ctx, event))

	got, err := f.coordinator.AdvanceEventOccurrence(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, got.StartTime.Before(time.Now().Add(-time.Minute)))

	raw, err := f.store.FetchEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, raw.StartTime.Equal(got.StartTime), "advanced start persisted")
}
