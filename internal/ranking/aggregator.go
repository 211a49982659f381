package ranking

import (
	"time"

	"github.com/pscheid92/rankpulse/internal/domain"
)

// Aggregator maintains per-product vote statistics incrementally from
// ledger deltas. It never scans the ledger during normal operation; full
// sums are reserved for Rebuild and Verify. All methods are called from the
// engine actor goroutine.
type Aggregator struct {
	stats map[string]domain.ProductStats
}

func NewAggregator() *Aggregator {
	return &Aggregator{stats: make(map[string]domain.ProductStats)}
}

// Ensure creates a zero-valued stats entry if the product has none yet.
// Used when seeding catalog products so they rank before their first vote.
func (a *Aggregator) Ensure(productID string) {
	if _, ok := a.stats[productID]; !ok {
		a.stats[productID] = domain.ProductStats{ProductID: productID}
	}
}

// ApplyDelta folds a non-zero ledger delta into the product's counters and
// stamps LastUpdated. Zero deltas must be filtered out by the caller so
// idempotent votes never advance the timestamp.
func (a *Aggregator) ApplyDelta(productID string, delta domain.VoteDelta, now time.Time) domain.ProductStats {
	s, ok := a.stats[productID]
	if !ok {
		s = domain.ProductStats{ProductID: productID}
	}

	s.Upvotes += delta.Up
	s.Downvotes += delta.Down
	s.TotalVotes = s.Upvotes + s.Downvotes
	s.NetScore = s.Upvotes - s.Downvotes
	s.LastUpdated = now

	a.stats[productID] = s
	return s
}

// Get returns the maintained stats for a product. The bool reports whether
// the product has ever been seen (seeded or voted on).
func (a *Aggregator) Get(productID string) (domain.ProductStats, bool) {
	s, ok := a.stats[productID]
	if !ok {
		return domain.ProductStats{ProductID: productID}, false
	}
	return s, true
}

// Rebuild reconstructs all counters by summing a full ledger snapshot.
// Products absent from the snapshot keep a zero-valued entry so seeded
// catalog products survive the rebuild. LastUpdated becomes the latest
// vote timestamp per product.
func (a *Aggregator) Rebuild(snapshot []domain.Vote) {
	rebuilt := make(map[string]domain.ProductStats, len(a.stats))
	for id := range a.stats {
		rebuilt[id] = domain.ProductStats{ProductID: id}
	}

	for _, vote := range snapshot {
		s, ok := rebuilt[vote.ProductID]
		if !ok {
			s = domain.ProductStats{ProductID: vote.ProductID}
		}
		switch vote.Direction {
		case domain.DirectionUp:
			s.Upvotes++
		case domain.DirectionDown:
			s.Downvotes++
		}
		s.TotalVotes = s.Upvotes + s.Downvotes
		s.NetScore = s.Upvotes - s.Downvotes
		if vote.CastAt.After(s.LastUpdated) {
			s.LastUpdated = vote.CastAt
		}
		rebuilt[vote.ProductID] = s
	}

	a.stats = rebuilt
}

// Verify checks the maintained counters against a full ledger snapshot.
// Products missing on either side count as zero. Returns true when the
// aggregate state matches the ledger exactly.
func (a *Aggregator) Verify(snapshot []domain.Vote) bool {
	type counts struct{ up, down int }
	summed := make(map[string]counts, len(snapshot))
	for _, vote := range snapshot {
		c := summed[vote.ProductID]
		switch vote.Direction {
		case domain.DirectionUp:
			c.up++
		case domain.DirectionDown:
			c.down++
		}
		summed[vote.ProductID] = c
	}

	for id, s := range a.stats {
		c := summed[id]
		if s.Upvotes != c.up || s.Downvotes != c.down {
			return false
		}
		delete(summed, id)
	}
	for _, c := range summed {
		if c.up != 0 || c.down != 0 {
			return false
		}
	}
	return true
}
