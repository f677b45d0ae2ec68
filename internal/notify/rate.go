package notify

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
)

// MinSendInterval is the single global minimum spacing between
// outbound messages, shared by every notification kind and every
// running dispatcher.
const MinSendInterval = 5 * time.Second

const claimBackoff = 200 * time.Millisecond

// TokenStore persists the global "last send" timestamp. It lives in
// the shared document store so independent dispatcher instances
// serialize against each other.
type TokenStore interface {
	// LastSendAt returns the recorded last send time; the zero time
	// means no send has been recorded yet.
	LastSendAt(ctx context.Context) (time.Time, error)
	// ClaimSendAt writes next only if the stored value still equals
	// prev. ok is false when another claimant raced the write.
	ClaimSendAt(ctx context.Context, prev, next time.Time) (bool, error)
}

// RateGate serializes senders against the shared token with an
// optimistic read-then-conditional-write loop. There is no release:
// claiming the token is the send permit.
type RateGate struct {
	Store    TokenStore
	Interval time.Duration

	// Injected for tests.
	Now   func() time.Time
	Sleep func(time.Duration)

	log lgr.L
}

func NewRateGate(store TokenStore, log lgr.L) *RateGate {
	return &RateGate{
		Store:    store,
		Interval: MinSendInterval,
		Now:      time.Now,
		Sleep:    time.Sleep,
		log:      log,
	}
}

// Acquire blocks until the minimum interval since the last global send
// has elapsed and this caller's claim won. Contention is retried with
// a fixed backoff, not locked.
func (g *RateGate) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		last, err := g.Store.LastSendAt(ctx)
		if err != nil {
			return err
		}

		if !last.IsZero() {
			if wait := g.Interval - g.Now().Sub(last); wait > 0 {
				g.Sleep(wait)
			}
		}

		ok, err := g.Store.ClaimSendAt(ctx, last, g.Now())
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		g.log.Logf("[DEBUG] rate token raced, retrying in %s", claimBackoff)
		g.Sleep(claimBackoff)
	}
}
