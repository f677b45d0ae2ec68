package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
	"github.com/bengol30/patifon-events-management-sub000/internal/roster"
	"github.com/bengol30/patifon-events-management-sub000/internal/storage/memory"
)

func TestAggregatorRecompute(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := lgr.New()

	require.NoError(t, store.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com",
	}))
	hours := 2.0
	require.NoError(t, store.CreateTask(ctx, &model.Task{
		ID: "t1", EventID: "e1", Title: "shift", Status: model.TaskStatusTODO,
		IsVolunteerTask: true, VolunteerHours: &hours,
		RequiredCompletions: 1, RemainingCompletions: 1,
		Assignees: []model.Assignee{{Name: "Noa", Email: "noa@x.com", Phone: "0502222222"}},
	}))

	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	agg := roster.NewAggregator(store, store, resolver, log)

	agg.Recompute(ctx, "e1")
	got := agg.Roster("e1")
	require.Len(t, got, 2)
	assert.Equal(t, "Alma", got[0].Name)
	assert.Equal(t, "Noa", got[1].Name)
}

func TestAggregatorBackfillsPhones(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := lgr.New()

	require.NoError(t, store.CreateUser(ctx, &model.User{
		ID: "u1", Name: "Alma", Email: "a@x.com", Phone: "0501111111",
	}))
	require.NoError(t, store.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com",
	}))

	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	agg := roster.NewAggregator(store, store, resolver, log)

	agg.Recompute(ctx, "e1")
	agg.WaitBackfill()

	got := agg.Roster("e1")
	require.Len(t, got, 1)
	assert.Equal(t, "0501111111", got[0].Phone, "phone backfilled from the user directory")
}

func TestAggregatorRecomputeAllRefreshesKnownRosters(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := lgr.New()

	require.NoError(t, store.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com",
	}))
	require.NoError(t, store.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v2", EventID: "e2", Name: "Noa", Email: "noa@x.com",
	}))

	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	agg := roster.NewAggregator(store, store, resolver, log)

	agg.Recompute(ctx, "e1")
	agg.Recompute(ctx, "e2")
	require.Len(t, agg.Roster("e1"), 1)

	// A removal that cannot be attributed to an event still has to
	// drop the volunteer from the affected roster.
	require.NoError(t, store.RemoveVolunteer(ctx, "v1"))
	agg.RecomputeAll(ctx)

	assert.Empty(t, agg.Roster("e1"), "removed volunteer gone after full refresh")
	assert.Len(t, agg.Roster("e2"), 1, "untouched roster intact")
	assert.Empty(t, agg.Roster(""), "no roster keyed by the empty event id")
}

func TestAggregatorRunRoutesUnattributedChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.New()
	log := lgr.New()

	require.NoError(t, store.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com",
	}))

	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	agg := roster.NewAggregator(store, store, resolver, log)
	agg.Recompute(ctx, "e1")
	require.Len(t, agg.Roster("e1"), 1)

	changes := make(chan roster.Change)
	done := make(chan struct{})
	go func() {
		agg.Run(ctx, changes)
		close(done)
	}()

	require.NoError(t, store.RemoveVolunteer(ctx, "v1"))
	changes <- roster.Change{}

	assert.Eventually(t, func() bool {
		return len(agg.Roster("e1")) == 0
	}, 2*time.Second, 10*time.Millisecond, "empty event id refreshes known rosters")

	cancel()
	<-done
}

func TestAggregatorRunReactsToChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.New()
	log := lgr.New()
	resolver := notify.NewPhoneResolver(store.UserDirectory(), store.VolunteerDirectory(), log)
	agg := roster.NewAggregator(store, store, resolver, log)

	changes := store.Subscribe()
	done := make(chan struct{})
	go func() {
		agg.Run(ctx, changes)
		close(done)
	}()

	require.NoError(t, store.CreateVolunteer(context.Background(), &model.Volunteer{
		ID: "v1", EventID: "e1", Name: "Alma", Email: "a@x.com",
	}))

	assert.Eventually(t, func() bool {
		return len(agg.Roster("e1")) == 1
	}, 2*time.Second, 10*time.Millisecond, "roster recomputed on push invalidation")

	cancel()
	<-done
}
