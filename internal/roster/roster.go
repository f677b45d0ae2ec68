// Package roster builds the unified volunteer directory for an event
// by merging explicit registrations with the assignees of volunteer
// tasks.
package roster

import "github.com/bengol30/patifon-events-management-sub000/internal/model"

// IdentityKey mirrors the assignee key derivation with every component
// case/whitespace normalized. Unkeyable records are skipped.
func IdentityKey(email, userID, name string) string {
	return model.Assignee{Email: email, UserID: userID, Name: name}.IdentityKey()
}

// BuildRoster merges the two relational sources into one deduplicated
// directory. Registrations are authoritative and come first; assignees
// of volunteer tasks only add new entries or fill fields the primary
// entry is missing. A populated field is never overwritten, and
// secondary data never overrides primary data.
func BuildRoster(registered []model.Volunteer, tasks []model.Task) []model.Volunteer {
	out := make([]model.Volunteer, 0, len(registered))
	index := make(map[string]int, len(registered))

	for _, v := range registered {
		key := IdentityKey(v.Email, v.UserID, v.Name)
		if key == "" {
			continue
		}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}

	for _, t := range tasks {
		if !t.IsVolunteerTask && t.VolunteerHours == nil {
			continue
		}
		for _, a := range model.SanitizeAssignees(t.Assignees) {
			key := a.IdentityKey()
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				fillMissing(&out[i], a)
				continue
			}
			v := model.Volunteer{
				EventID: t.EventID,
				Name:    a.Name,
				UserID:  a.UserID,
				Email:   a.Email,
				Phone:   a.Phone,
			}
			if t.VolunteerHours != nil {
				v.Hours = *t.VolunteerHours
			}
			index[key] = len(out)
			out = append(out, v)
		}
	}

	return out
}

func fillMissing(v *model.Volunteer, a model.Assignee) {
	if v.Phone == "" && a.Phone != "" {
		v.Phone = a.Phone
	}
	if v.Email == "" && a.Email != "" {
		v.Email = a.Email
	}
	if v.UserID == "" && a.UserID != "" {
		v.UserID = a.UserID
	}
	if v.Name == "" && a.Name != "" {
		v.Name = a.Name
	}
}
