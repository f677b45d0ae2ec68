package roster

import (
	"context"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
)

// Change is a push invalidation from the data layer: volunteer records
// or tasks of the named event changed.
type Change struct {
	EventID string
}

// Aggregator keeps a current merged roster per event, recomputing on
// push invalidations rather than on a timer. Missing phones are
// backfilled best effort through the shared resolver; resolved numbers
// stay cached for the session.
type Aggregator struct {
	volunteers model.VolunteerRepository
	tasks      model.TaskRepository
	resolver   *notify.PhoneResolver
	log        lgr.L

	mu      sync.RWMutex
	rosters map[string][]model.Volunteer

	backfills sync.WaitGroup // test hook, see WaitBackfill
}

func NewAggregator(volunteers model.VolunteerRepository, tasks model.TaskRepository, resolver *notify.PhoneResolver, log lgr.L) *Aggregator {
	return &Aggregator{
		volunteers: volunteers,
		tasks:      tasks,
		resolver:   resolver,
		log:        log,
		rosters:    make(map[string][]model.Volunteer),
	}
}

// Run consumes invalidations until the context is cancelled or the
// channel closes.
func (a *Aggregator) Run(ctx context.Context, changes <-chan Change) {
	for {
		select {
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if ch.EventID == "" {
				a.RecomputeAll(ctx)
				continue
			}
			a.Recompute(ctx, ch.EventID)
		case <-ctx.Done():
			return
		}
	}
}

// Roster returns the current merged roster for an event.
func (a *Aggregator) Roster(eventID string) []model.Volunteer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.Volunteer, len(a.rosters[eventID]))
	copy(out, a.rosters[eventID])
	return out
}

// Recompute rebuilds one event's roster from both sources. Source read
// failures keep the previous roster in place.
func (a *Aggregator) Recompute(ctx context.Context, eventID string) {
	registered, err := a.volunteers.FetchVolunteersByEvent(ctx, eventID)
	if err != nil {
		a.log.Logf("[WARN] could not fetch volunteers for event %s: %v", eventID, err)
		return
	}
	tasks, err := a.tasks.FilterTasks(ctx, model.TaskFilter{EventID: eventID, VolunteerOnly: true})
	if err != nil {
		a.log.Logf("[WARN] could not fetch volunteer tasks for event %s: %v", eventID, err)
		return
	}

	merged := BuildRoster(registered, tasks)

	a.mu.Lock()
	a.rosters[eventID] = merged
	a.mu.Unlock()

	for i, v := range merged {
		if v.Phone != "" {
			continue
		}
		a.backfills.Add(1)
		go a.backfillPhone(ctx, eventID, i, v)
	}
}

// RecomputeAll rebuilds every roster currently tracked. Used when an
// invalidation cannot name its event, such as a delete of a document
// the change stream never saw on this session.
func (a *Aggregator) RecomputeAll(ctx context.Context) {
	a.mu.RLock()
	ids := make([]string, 0, len(a.rosters))
	for id := range a.rosters {
		ids = append(ids, id)
	}
	a.mu.RUnlock()

	for _, id := range ids {
		a.Recompute(ctx, id)
	}
}

// WaitBackfill blocks until in-flight phone backfills finish.
func (a *Aggregator) WaitBackfill() {
	a.backfills.Wait()
}

func (a *Aggregator) backfillPhone(ctx context.Context, eventID string, i int, v model.Volunteer) {
	defer a.backfills.Done()

	phone := a.resolver.Resolve(ctx, model.Assignee{
		Name:   v.Name,
		UserID: v.UserID,
		Email:  v.Email,
	}, eventID)
	if phone == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.rosters[eventID]
	if i < len(current) && current[i].Phone == "" &&
		IdentityKey(current[i].Email, current[i].UserID, current[i].Name) == IdentityKey(v.Email, v.UserID, v.Name) {
		current[i].Phone = phone
	}
}
