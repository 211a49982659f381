package ranking

import (
	"testing"
	"time"

	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorApplyDelta_Counters(t *testing.T) {
	agg := NewAggregator()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stats := agg.ApplyDelta("p1", domain.VoteDelta{Up: 1}, now)
	assert.Equal(t, 1, stats.Upvotes)
	assert.Equal(t, 0, stats.Downvotes)
	assert.Equal(t, 1, stats.TotalVotes)
	assert.Equal(t, 1, stats.NetScore)
	assert.Equal(t, now, stats.LastUpdated)

	later := now.Add(time.Second)
	stats = agg.ApplyDelta("p1", domain.VoteDelta{Up: -1, Down: 1}, later)
	assert.Equal(t, 0, stats.Upvotes)
	assert.Equal(t, 1, stats.Downvotes)
	assert.Equal(t, 1, stats.TotalVotes)
	assert.Equal(t, -1, stats.NetScore)
	assert.Equal(t, later, stats.LastUpdated)
}

func TestAggregatorEnsure_ZeroEntry(t *testing.T) {
	agg := NewAggregator()

	agg.Ensure("p1")

	stats, known := agg.Get("p1")
	assert.True(t, known)
	assert.Equal(t, domain.ProductStats{ProductID: "p1"}, stats)

	// Ensure never clobbers existing counters.
	agg.ApplyDelta("p1", domain.VoteDelta{Up: 1}, time.Now())
	agg.Ensure("p1")
	stats, _ = agg.Get("p1")
	assert.Equal(t, 1, stats.Upvotes)
}

func TestAggregatorGet_UnknownProduct(t *testing.T) {
	agg := NewAggregator()

	stats, known := agg.Get("missing")
	assert.False(t, known)
	assert.Equal(t, "missing", stats.ProductID)
	assert.Zero(t, stats.TotalVotes)
}

func TestAggregatorRebuild_MatchesIncremental(t *testing.T) {
	ledger := NewLedger()
	incremental := NewAggregator()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	votes := []struct {
		user, product string
		direction     domain.Direction
	}{
		{"alice", "p1", domain.DirectionUp},
		{"bob", "p1", domain.DirectionUp},
		{"carol", "p1", domain.DirectionDown},
		{"alice", "p2", domain.DirectionDown},
		{"alice", "p1", domain.DirectionDown}, // switch
		{"bob", "p1", domain.DirectionNone},   // retraction
	}
	for i, v := range votes {
		at := now.Add(time.Duration(i) * time.Second)
		delta := ledger.Apply(v.user, v.product, v.direction, at)
		if !delta.IsZero() {
			incremental.ApplyDelta(v.product, delta, at)
		}
	}

	rebuilt := NewAggregator()
	rebuilt.Rebuild(ledger.Snapshot())

	for _, id := range []string{"p1", "p2"} {
		want, _ := incremental.Get(id)
		got, _ := rebuilt.Get(id)
		assert.Equal(t, want.Upvotes, got.Upvotes, id)
		assert.Equal(t, want.Downvotes, got.Downvotes, id)
		assert.Equal(t, want.NetScore, got.NetScore, id)
		assert.Equal(t, want.TotalVotes, got.TotalVotes, id)
	}
}

func TestAggregatorRebuild_KeepsSeededZeroEntries(t *testing.T) {
	agg := NewAggregator()
	agg.Ensure("seeded")
	agg.ApplyDelta("voted", domain.VoteDelta{Up: 1}, time.Now())

	agg.Rebuild(nil)

	stats, known := agg.Get("seeded")
	require.True(t, known)
	assert.Zero(t, stats.TotalVotes)

	stats, known = agg.Get("voted")
	require.True(t, known)
	assert.Zero(t, stats.TotalVotes)
}

func TestAggregatorVerify_Clean(t *testing.T) {
	ledger := NewLedger()
	agg := NewAggregator()
	now := time.Now()

	delta := ledger.Apply("alice", "p1", domain.DirectionUp, now)
	agg.ApplyDelta("p1", delta, now)
	agg.Ensure("seeded")

	assert.True(t, agg.Verify(ledger.Snapshot()))
}

func TestAggregatorVerify_DetectsDrift(t *testing.T) {
	ledger := NewLedger()
	agg := NewAggregator()
	now := time.Now()

	delta := ledger.Apply("alice", "p1", domain.DirectionUp, now)
	agg.ApplyDelta("p1", delta, now)

	// Extra count the ledger never produced.
	agg.ApplyDelta("p1", domain.VoteDelta{Up: 1}, now)

	assert.False(t, agg.Verify(ledger.Snapshot()))
}

func TestAggregatorVerify_DetectsMissingProduct(t *testing.T) {
	ledger := NewLedger()
	agg := NewAggregator()
	now := time.Now()

	ledger.Apply("alice", "p1", domain.DirectionUp, now)

	// Aggregator never saw the vote.
	assert.False(t, agg.Verify(ledger.Snapshot()))
}
