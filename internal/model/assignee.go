package model

import "strings"

type Assignee struct {
	Name   string `bson:"name"`
	UserID string `bson:"userId,omitempty"`
	Email  string `bson:"email,omitempty"`
	Phone  string `bson:"phone,omitempty"`
}

// IdentityKey derives the dedup/merge key for a person-like record:
// email wins over user id, user id wins over name. Empty means the
// record cannot be keyed and must not be persisted.
func (a Assignee) IdentityKey() string {
	if email := strings.ToLower(strings.TrimSpace(a.Email)); email != "" {
		return email
	}
	if id := strings.TrimSpace(a.UserID); id != "" {
		return id
	}
	if name := strings.ToLower(strings.TrimSpace(a.Name)); name != "" {
		return name
	}
	return ""
}

// SanitizeAssignees normalizes a raw assignee list for writing: trims
// names, lowercases emails, drops entries without a name or identity
// key, and deduplicates by identity key keeping the first occurrence.
// Order is preserved; the first entry becomes the legacy scalar
// assignee. Idempotent.
func SanitizeAssignees(raw []Assignee) []Assignee {
	clean := make([]Assignee, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, a := range raw {
		a.Name = strings.TrimSpace(a.Name)
		a.UserID = strings.TrimSpace(a.UserID)
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		a.Phone = strings.TrimSpace(a.Phone)
		if a.Name == "" {
			continue
		}
		key := a.IdentityKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, a)
	}
	return clean
}

// ToggleAssignee removes the candidate if its identity key is already
// present, otherwise appends it. The input slice is never mutated.
func ToggleAssignee(set []Assignee, candidate Assignee) []Assignee {
	key := candidate.IdentityKey()
	out := make([]Assignee, 0, len(set)+1)
	removed := false
	for _, a := range set {
		if a.IdentityKey() == key {
			removed = true
			continue
		}
		out = append(out, a)
	}
	if !removed {
		out = append(out, candidate)
	}
	return out
}
