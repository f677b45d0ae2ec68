package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

func TestComposeMessage(t *testing.T) {
	mc := MessageContext{
		Task: model.Task{
			ID:          "t1",
			Title:       "לתלות שלטים",
			Description: "בכניסה הראשית",
			Priority:    "גבוהה",
			DueDate:     "2026-03-20T14:00",
		},
		Event:    &model.Event{Title: "פסטיבל קיץ"},
		TaskURL:  "https://app.example/tasks/t1",
		EventURL: "https://app.example/events/e1",
	}

	body := ComposeMessage(model.Assignee{Name: "dana levi"}, mc)
	lines := strings.Split(body, "\n")

	assert.Equal(t, "שלום Dana Levi,", lines[0])
	assert.Contains(t, body, "לתלות שלטים")
	assert.Contains(t, body, "פסטיבל קיץ")
	assert.Contains(t, body, "2026-03-20T14:00")
	assert.Contains(t, body, "גבוהה")
	assert.Contains(t, body, "https://app.example/tasks/t1")
}

func TestComposeMessageSkipsEmptyLines(t *testing.T) {
	body := ComposeMessage(model.Assignee{Name: "Dana"}, MessageContext{
		Task: model.Task{ID: "t1", Title: "משימה"},
	})
	for _, line := range strings.Split(body, "\n") {
		assert.NotEmpty(t, strings.TrimSpace(line))
	}
	assert.NotContains(t, body, "אירוע:")
	assert.NotContains(t, body, "תאריך יעד:")
}

func TestComposeMessageOverride(t *testing.T) {
	body := ComposeMessage(model.Assignee{Name: "Dana"}, MessageContext{
		Task:     model.Task{ID: "broadcast-e1", Title: "ignored"},
		Override: "האירוע מתחיל בשש",
	})
	assert.Contains(t, body, "האירוע מתחיל בשש")
	assert.NotContains(t, body, "ignored")
}
