package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

// UserDirectory resolves phone numbers from the user collection.
type UserDirectory interface {
	PhoneByUserID(ctx context.Context, userID string) (string, error)
	PhoneByEmail(ctx context.Context, email string) (string, error)
}

// VolunteerDirectory resolves phone numbers from volunteer records.
// An empty eventID widens the lookup to every event.
type VolunteerDirectory interface {
	PhoneByEmail(ctx context.Context, eventID, email string) (string, error)
	GeneralPhoneByEmail(ctx context.Context, email string) (string, error)
}

// PhoneResolver walks the fallback chain for a recipient's phone
// number: the assignee record itself, then the user directory by id,
// then volunteer records scoped to the event, then the user directory
// by email, then volunteers across all events, then the general
// volunteer directory. First non-empty result wins. Results are cached
// by identity key for the lifetime of the resolver; the cache is
// additive only.
type PhoneResolver struct {
	users      UserDirectory
	volunteers VolunteerDirectory
	log        lgr.L

	mu    sync.Mutex
	cache map[string]string
}

func NewPhoneResolver(users UserDirectory, volunteers VolunteerDirectory, log lgr.L) *PhoneResolver {
	return &PhoneResolver{
		users:      users,
		volunteers: volunteers,
		log:        log,
		cache:      make(map[string]string),
	}
}

// Resolve returns "" when no source knows a phone for the assignee.
// A miss is not an error; lookup failures are logged and the chain
// moves on.
func (r *PhoneResolver) Resolve(ctx context.Context, a model.Assignee, eventID string) string {
	if a.Phone != "" {
		return a.Phone
	}

	key := a.IdentityKey()
	if key != "" {
		r.mu.Lock()
		cached, ok := r.cache[key]
		r.mu.Unlock()
		if ok {
			return cached
		}
	}

	phone := r.lookup(ctx, a, eventID)
	if phone != "" && key != "" {
		r.mu.Lock()
		r.cache[key] = phone
		r.mu.Unlock()
	}
	return phone
}

func (r *PhoneResolver) lookup(ctx context.Context, a model.Assignee, eventID string) string {
	type source struct {
		name string
		fn   func() (string, error)
	}
	var chain []source
	if a.UserID != "" {
		chain = append(chain, source{"user by id", func() (string, error) {
			return r.users.PhoneByUserID(ctx, a.UserID)
		}})
	}
	if a.Email != "" {
		chain = append(chain,
			source{"event volunteers", func() (string, error) {
				return r.volunteers.PhoneByEmail(ctx, eventID, a.Email)
			}},
			source{"user by email", func() (string, error) {
				return r.users.PhoneByEmail(ctx, a.Email)
			}},
			source{"all volunteers", func() (string, error) {
				return r.volunteers.PhoneByEmail(ctx, "", a.Email)
			}},
			source{"general volunteers", func() (string, error) {
				return r.volunteers.GeneralPhoneByEmail(ctx, a.Email)
			}},
		)
	}

	for _, s := range chain {
		phone, err := s.fn()
		if err != nil {
			if !isNotFound(err) {
				r.log.Logf("[WARN] phone lookup via %s failed for %q: %v", s.name, a.Name, err)
			}
			continue
		}
		if phone != "" {
			return phone
		}
	}
	return ""
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrVolunteerNotFound)
}
