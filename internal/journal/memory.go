package journal

import (
	"context"
	"sync"

	"github.com/pscheid92/rankpulse/internal/domain"
)

type pairKey struct {
	userID    string
	productID string
}

// MemoryJournal keeps the live vote set in process memory. It satisfies the
// journal contract for tests and single-process runs without redis.
type MemoryJournal struct {
	mu    sync.Mutex
	votes map[pairKey]domain.Vote
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{votes: make(map[pairKey]domain.Vote)}
}

func (j *MemoryJournal) Append(_ context.Context, vote domain.Vote) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	key := pairKey{userID: vote.UserID, productID: vote.ProductID}
	if vote.Direction == domain.DirectionNone {
		delete(j.votes, key)
		return nil
	}
	j.votes[key] = vote
	return nil
}

func (j *MemoryJournal) Replay(_ context.Context) ([]domain.Vote, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	votes := make([]domain.Vote, 0, len(j.votes))
	for _, vote := range j.votes {
		votes = append(votes, vote)
	}
	return votes, nil
}
