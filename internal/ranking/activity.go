package ranking

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

// ActivityTracker keeps the sliding-window set of users who recently voted.
// Expired entries are purged lazily on read; there is no background sweep.
type ActivityTracker struct {
	mu     sync.Mutex
	window time.Duration
	clock  clockwork.Clock
	seen   map[string]time.Time
}

func NewActivityTracker(window time.Duration, clock clockwork.Clock) *ActivityTracker {
	return &ActivityTracker{
		window: window,
		clock:  clock,
		seen:   make(map[string]time.Time),
	}
}

// Record marks a user as active now.
func (t *ActivityTracker) Record(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[userID] = t.clock.Now()
}

// Active returns the users inside the activity window, sorted by ID.
// Entries outside the window are deleted as a side effect.
func (t *ActivityTracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	users := make([]string, 0, len(t.seen))
	for userID, last := range t.seen {
		if now.Sub(last) > t.window {
			delete(t.seen, userID)
			continue
		}
		users = append(users, userID)
	}
	sort.Strings(users)

	metrics.ActiveUsers.Set(float64(len(users)))
	return users
}
