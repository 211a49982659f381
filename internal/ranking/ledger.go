package ranking

import (
	"time"

	"github.com/pscheid92/rankpulse/internal/domain"
)

type pairKey struct {
	userID    string
	productID string
}

type ledgerEntry struct {
	direction domain.Direction
	castAt    time.Time
}

// Ledger is the authoritative record of the live vote per (user, product)
// pair. All methods are called from the engine actor goroutine (no
// concurrent access).
type Ledger struct {
	votes map[pairKey]ledgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{votes: make(map[pairKey]ledgerEntry)}
}

// Apply records the vote and returns the counter delta it produced.
// Re-submitting the unchanged direction returns the zero delta and leaves
// the stored entry untouched, including its timestamp. DirectionNone
// removes the pair.
func (l *Ledger) Apply(userID, productID string, direction domain.Direction, now time.Time) domain.VoteDelta {
	key := pairKey{userID: userID, productID: productID}

	prev := domain.DirectionNone
	if entry, ok := l.votes[key]; ok {
		prev = entry.direction
	}

	delta := domain.DeltaBetween(prev, direction)
	if delta.IsZero() {
		return delta
	}

	if direction == domain.DirectionNone {
		delete(l.votes, key)
	} else {
		l.votes[key] = ledgerEntry{direction: direction, castAt: now}
	}
	return delta
}

// Load inserts a replayed vote without delta bookkeeping. Votes with
// DirectionNone are skipped; a retracted pair has no ledger entry.
func (l *Ledger) Load(vote domain.Vote) {
	if vote.Direction == domain.DirectionNone {
		return
	}
	key := pairKey{userID: vote.UserID, productID: vote.ProductID}
	l.votes[key] = ledgerEntry{direction: vote.Direction, castAt: vote.CastAt}
}

// Snapshot returns all live votes. Used for the cold-start rebuild and the
// periodic divergence audit.
func (l *Ledger) Snapshot() []domain.Vote {
	votes := make([]domain.Vote, 0, len(l.votes))
	for key, entry := range l.votes {
		votes = append(votes, domain.Vote{
			UserID:    key.userID,
			ProductID: key.productID,
			Direction: entry.direction,
			CastAt:    entry.castAt,
		})
	}
	return votes
}

// Len returns the number of live votes.
func (l *Ledger) Len() int {
	return len(l.votes)
}
