package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

// MessageContext carries everything the template needs besides the
// recipient. Override replaces the task body for broadcast-style
// messages.
type MessageContext struct {
	Task     model.Task
	Event    *model.Event
	TaskURL  string
	EventURL string
	Override string
}

var nameCaser = cases.Title(language.Und)

// ComposeMessage renders the outbound message body: greeting, task
// title, event name, due date, priority, description and page links,
// joining only the non-empty lines.
func ComposeMessage(a model.Assignee, mc MessageContext) string {
	lines := []string{
		fmt.Sprintf("שלום %s,", nameCaser.String(strings.TrimSpace(a.Name))),
	}

	if mc.Override != "" {
		lines = append(lines, mc.Override)
	} else {
		lines = append(lines, "משימה חדשה עבורך: "+mc.Task.Title)
		if mc.Event != nil && mc.Event.Title != "" {
			lines = append(lines, "אירוע: "+mc.Event.Title)
		}
		if mc.Task.DueDate != "" {
			lines = append(lines, "תאריך יעד: "+mc.Task.DueDate)
		}
		if mc.Task.Priority != "" {
			lines = append(lines, "עדיפות: "+mc.Task.Priority)
		}
		if mc.Task.Description != "" {
			lines = append(lines, mc.Task.Description)
		}
	}

	if mc.TaskURL != "" {
		lines = append(lines, "למשימה: "+mc.TaskURL)
	}
	if mc.EventURL != "" {
		lines = append(lines, "לאירוע: "+mc.EventURL)
	}

	nonEmpty := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
