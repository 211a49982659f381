package domain

import "context"

// VoteJournal is the asynchronous persistence collaborator. Appends happen
// outside the vote critical path (see journal.Writer); Replay feeds the
// cold-start rebuild. The journal keeps only the live vote per
// (user, product) pair, so replay order is irrelevant.
type VoteJournal interface {
	Append(ctx context.Context, vote Vote) error
	Replay(ctx context.Context) ([]Vote, error)
}
