package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

// Sender delivers one message to one recipient address.
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}

type pendingItem struct {
	assignee model.Assignee
	mc       MessageContext
}

// Dispatcher owns a FIFO queue of recipients awaiting a notification
// and a single drainer that walks it, spacing sends through the shared
// rate gate. Enqueue never blocks on delivery, and delivery failures
// never propagate to the caller: every failing step is logged and the
// loop moves to the next recipient. Once a drain starts it runs to
// exhaustion; enqueuers cannot cancel it.
type Dispatcher struct {
	gate     *RateGate
	resolver *PhoneResolver
	sender   Sender
	tasks    model.TaskRepository // optional, stamps last-message metadata
	log      lgr.L
	now      func() time.Time

	mu      sync.Mutex
	queue   []pendingItem
	queued  map[string]struct{}
	running bool
	wg      sync.WaitGroup
}

func NewDispatcher(gate *RateGate, resolver *PhoneResolver, sender Sender, tasks model.TaskRepository, log lgr.L) *Dispatcher {
	return &Dispatcher{
		gate:     gate,
		resolver: resolver,
		sender:   sender,
		tasks:    tasks,
		log:      log,
		now:      time.Now,
		queued:   make(map[string]struct{}),
	}
}

// Enqueue merges assignees into the pending queue, deduplicated by
// identity key within the message's task, and makes sure exactly one
// drainer is running. Re-enqueueing a recipient that is already queued
// for the same task is a no-op, which is what makes repeated "notify
// assignees of task X" calls idempotent.
func (d *Dispatcher) Enqueue(assignees []model.Assignee, mc MessageContext) {
	clean := model.SanitizeAssignees(assignees)
	if len(clean) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range clean {
		key := mc.Task.ID + "|" + a.IdentityKey()
		if _, ok := d.queued[key]; ok {
			continue
		}
		d.queued[key] = struct{}{}
		d.queue = append(d.queue, pendingItem{assignee: a, mc: mc})
	}

	if d.running || len(d.queue) == 0 {
		return
	}
	d.running = true
	d.wg.Add(1)
	go d.drain()
}

// Wait blocks until every started drain has finished. Test hook.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain() {
	defer d.wg.Done()

	// The queue drains to exhaustion regardless of the enqueuing
	// callers' lifetimes.
	ctx := context.Background()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		p := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.deliver(ctx, p)

		// The dedup key stays until delivery finished, so a recipient
		// mid-delivery cannot be enqueued a second time.
		d.mu.Lock()
		delete(d.queued, p.mc.Task.ID+"|"+p.assignee.IdentityKey())
		d.mu.Unlock()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, p pendingItem) {
	if err := d.gate.Acquire(ctx); err != nil {
		d.log.Logf("[WARN] rate gate unavailable, skipping %q: %v", p.assignee.Name, err)
		return
	}

	phone := d.resolver.Resolve(ctx, p.assignee, p.mc.Task.EventID)
	if phone == "" {
		d.log.Logf("[INFO] no phone for %q, skipping", p.assignee.Name)
		return
	}

	recipient := RecipientAddress(phone)
	if recipient == "" {
		d.log.Logf("[INFO] phone %q for %q does not normalize, skipping", phone, p.assignee.Name)
		return
	}

	body := ComposeMessage(p.assignee, p.mc)
	if err := d.sender.Send(ctx, recipient, body); err != nil {
		d.log.Logf("[WARN] send to %q failed: %v", p.assignee.Name, err)
		return
	}
	d.log.Logf("[DEBUG] sent notification to %q for task %s", p.assignee.Name, p.mc.Task.ID)

	d.stamp(ctx, p.mc.Task.ID)
}

// stamp records last-message metadata on the task, best effort. The
// write is field-scoped so a task update landing while the message was
// in flight is never rolled back.
func (d *Dispatcher) stamp(ctx context.Context, taskID string) {
	if d.tasks == nil || taskID == "" {
		return
	}
	err := d.tasks.StampMessage(ctx, taskID, d.now(), "coordinator")
	if err != nil && !errors.Is(err, model.ErrTaskNotFound) {
		d.log.Logf("[WARN] could not stamp message time on task %s: %v", taskID, err)
	}
}
