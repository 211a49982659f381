package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

const appendTimeout = 2 * time.Second

// Writer applies journal appends asynchronously. Enqueue never blocks:
// when the buffer is full the vote is dropped and counted, trading
// durability for vote latency. Divergence between journal and ledger only
// costs replay fidelity after a restart, never correctness of the live
// aggregates.
type Writer struct {
	journal  domain.VoteJournal
	ch       chan domain.Vote
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWriter starts the background append goroutine.
func NewWriter(journal domain.VoteJournal, buffer int) *Writer {
	w := &Writer{
		journal: journal,
		ch:      make(chan domain.Vote, buffer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue hands a vote to the background writer.
func (w *Writer) Enqueue(vote domain.Vote) {
	select {
	case <-w.stopCh:
		return
	default:
	}

	select {
	case w.ch <- vote:
		metrics.JournalAppendsTotal.Inc()
	default:
		metrics.JournalDropsTotal.Inc()
		slog.Warn("Journal buffer full, dropping vote", "user_id", vote.UserID, "product_id", vote.ProductID)
	}
}

func (w *Writer) run() {
	defer close(w.doneCh)

	for {
		select {
		case vote := <-w.ch:
			w.append(vote)
		case <-w.stopCh:
			// Drain whatever is already buffered before exiting.
			for {
				select {
				case vote := <-w.ch:
					w.append(vote)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) append(vote domain.Vote) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := w.journal.Append(ctx, vote); err != nil {
		metrics.JournalAppendErrorsTotal.Inc()
		slog.Error("Journal append failed", "user_id", vote.UserID, "product_id", vote.ProductID, "error", err)
	}
}

// Stop drains the buffer and waits for the goroutine to exit.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
}
