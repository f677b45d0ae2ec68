package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/roster"
)

func floatPtr(f float64) *float64 { return &f }

func TestBuildRosterMergesPhoneFromTaskAssignee(t *testing.T) {
	registered := []model.Volunteer{
		{ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com", Phone: ""},
	}
	tasks := []model.Task{
		{
			ID: "t1", EventID: "e1", IsVolunteerTask: true, VolunteerHours: floatPtr(2),
			Assignees: []model.Assignee{{Name: "Alma A", Email: "A@X.com", Phone: "0501234567"}},
		},
	}

	merged := roster.BuildRoster(registered, tasks)
	require.Len(t, merged, 1)
	assert.Equal(t, "a@x.com", merged[0].Email)
	assert.Equal(t, "0501234567", merged[0].Phone, "missing phone filled from secondary source")
	assert.Equal(t, "Alma", merged[0].Name, "primary source fields win")
}

func TestBuildRosterNeverOverwritesPrimary(t *testing.T) {
	registered := []model.Volunteer{
		{ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com", Phone: "0500000000"},
	}
	tasks := []model.Task{
		{
			ID: "t1", EventID: "e1", IsVolunteerTask: true,
			VolunteerHours: floatPtr(1),
			Assignees:      []model.Assignee{{Name: "Other", Email: "a@x.com", Phone: "0509999999"}},
		},
	}

	merged := roster.BuildRoster(registered, tasks)
	require.Len(t, merged, 1)
	assert.Equal(t, "0500000000", merged[0].Phone)
	assert.Equal(t, "Alma", merged[0].Name)
}

func TestBuildRosterAddsTaskOnlyVolunteers(t *testing.T) {
	tasks := []model.Task{
		{
			ID: "t1", EventID: "e1", IsVolunteerTask: true, VolunteerHours: floatPtr(3),
			Assignees: []model.Assignee{
				{Name: "Noa", Email: "noa@x.com"},
				{Name: ""}, // unkeyable, skipped
			},
		},
		{
			ID: "t2", EventID: "e1", // not a volunteer task
			Assignees: []model.Assignee{{Name: "Team Member", Email: "tm@x.com"}},
		},
	}

	merged := roster.BuildRoster(nil, tasks)
	require.Len(t, merged, 1)
	assert.Equal(t, "Noa", merged[0].Name)
	assert.Equal(t, float64(3), merged[0].Hours)
}

func TestBuildRosterVolunteerHoursFlagAlone(t *testing.T) {
	// A task carrying volunteer hours counts as a volunteer source
	// even without the flag.
	tasks := []model.Task{
		{
			ID: "t1", EventID: "e1", VolunteerHours: floatPtr(1),
			Assignees: []model.Assignee{{Name: "Noa", Email: "noa@x.com"}},
		},
	}
	assert.Len(t, roster.BuildRoster(nil, tasks), 1)
}

func TestBuildRosterDedupsRegistrations(t *testing.T) {
	registered := []model.Volunteer{
		{ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com"},
		{ID: "v2", EventID: "e1", Name: "Alma Again", Email: " A@X.COM "},
		{ID: "v3", EventID: "e1"}, // unkeyable
	}
	merged := roster.BuildRoster(registered, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "Alma", merged[0].Name)
}
