package ranking

import (
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

// auditEveryTicks controls how often the aggregator is verified against a
// full ledger snapshot (every N debounce ticks; ~24s at the 200ms default).
const auditEveryTicks = 120

// --- Command types ---

type engineCmd interface{ engineCmd() }

type cmdApplyVote struct {
	userID    string
	productID string
	category  string
	direction domain.Direction
	replyCh   chan applyVoteResult
}

func (cmdApplyVote) engineCmd() {}

type applyVoteResult struct {
	stats   domain.ProductStats
	applied bool
}

type cmdGetStats struct {
	productID string
	replyCh   chan statsResult
}

func (cmdGetStats) engineCmd() {}

type statsResult struct {
	stats domain.ProductStats
	known bool
}

type cmdGetRanking struct {
	category string
	replyCh  chan []domain.RankedEntry
}

func (cmdGetRanking) engineCmd() {}

type cmdGetAllRankings struct {
	replyCh chan []domain.RankedEntry
}

func (cmdGetAllRankings) engineCmd() {}

type cmdSeed struct {
	products []domain.Product
	replyCh  chan struct{}
}

func (cmdSeed) engineCmd() {}

type cmdRestore struct {
	votes   []RestoredVote
	replyCh chan int
}

func (cmdRestore) engineCmd() {}

type cmdTick struct{}

func (cmdTick) engineCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) engineCmd() {}

// RestoredVote pairs a journaled vote with its catalog category, resolved
// by the caller before the vote enters the actor.
type RestoredVote struct {
	Vote     domain.Vote
	Category string
}

// --- Engine ---

// Engine owns the ledger, the aggregator, and the per-category ranking
// cache. All state is touched only by the actor goroutine; the public API
// sends commands and waits on reply channels, so vote applications are
// linearized and reads always observe a consistent cut.
type Engine struct {
	cmdCh    chan engineCmd
	clock    clockwork.Clock
	notifier domain.Notifier
	debounce time.Duration

	ledger     *Ledger
	aggregator *Aggregator

	categories map[string]string
	members    map[string]map[string]struct{}

	rankings      map[string][]domain.RankedEntry
	dirty         map[string]struct{}
	pending       map[string]struct{}
	lastRecompute map[string]time.Time

	tickCount int
	stopCh    chan struct{}
}

// NewEngine creates the engine. notifier receives one coalesced Notify per
// flush; debounce is both the flush interval and the staleness bound a
// read tolerates before forcing a recomputation.
func NewEngine(notifier domain.Notifier, clock clockwork.Clock, debounce time.Duration) *Engine {
	return &Engine{
		cmdCh:         make(chan engineCmd, 512),
		clock:         clock,
		notifier:      notifier,
		debounce:      debounce,
		ledger:        NewLedger(),
		aggregator:    NewAggregator(),
		categories:    make(map[string]string),
		members:       make(map[string]map[string]struct{}),
		rankings:      make(map[string][]domain.RankedEntry),
		dirty:         make(map[string]struct{}),
		pending:       make(map[string]struct{}),
		lastRecompute: make(map[string]time.Time),
		stopCh:        make(chan struct{}),
	}
}

// Start begins the engine's background goroutines (actor and ticker).
func (e *Engine) Start() {
	go e.run()
	go e.tickerLoop()
}

func (e *Engine) run() {
	for cmd := range e.cmdCh {
		switch c := cmd.(type) {
		case cmdApplyVote:
			c.replyCh <- e.handleApplyVote(c)

		case cmdGetStats:
			stats, known := e.aggregator.Get(c.productID)
			c.replyCh <- statsResult{stats: stats, known: known}

		case cmdGetRanking:
			c.replyCh <- e.handleGetRanking(c.category)

		case cmdGetAllRankings:
			c.replyCh <- e.handleGetAllRankings()

		case cmdSeed:
			e.handleSeed(c.products)
			c.replyCh <- struct{}{}

		case cmdRestore:
			c.replyCh <- e.handleRestore(c.votes)

		case cmdTick:
			e.handleTick()

		case cmdStop:
			close(e.stopCh)
			close(c.doneCh)
			return
		}
	}
}

func (e *Engine) tickerLoop() {
	ticker := e.clock.NewTicker(e.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			e.cmdCh <- cmdTick{}
		case <-e.stopCh:
			return
		}
	}
}

// --- Actor handlers ---

func (e *Engine) handleApplyVote(c cmdApplyVote) applyVoteResult {
	now := e.clock.Now()

	delta := e.ledger.Apply(c.userID, c.productID, c.direction, now)
	if delta.IsZero() {
		metrics.VoteNoopsTotal.Inc()
		stats, _ := e.aggregator.Get(c.productID)
		return applyVoteResult{stats: stats, applied: false}
	}

	stats := e.aggregator.ApplyDelta(c.productID, delta, now)
	e.trackProduct(c.productID, c.category)
	e.dirty[c.category] = struct{}{}
	e.pending[c.category] = struct{}{}

	metrics.VotesAppliedTotal.WithLabelValues(string(c.direction)).Inc()
	return applyVoteResult{stats: stats, applied: true}
}

func (e *Engine) handleGetRanking(category string) []domain.RankedEntry {
	e.refreshIfStale(category)
	return copyRanking(e.rankings[category])
}

func (e *Engine) handleGetAllRankings() []domain.RankedEntry {
	cats := make([]string, 0, len(e.members))
	for cat := range e.members {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var out []domain.RankedEntry
	for _, cat := range cats {
		e.refreshIfStale(cat)
		out = append(out, e.rankings[cat]...)
	}
	return out
}

func (e *Engine) handleSeed(products []domain.Product) {
	for _, p := range products {
		e.aggregator.Ensure(p.ID)
		e.trackProduct(p.ID, p.Category)
		e.dirty[p.Category] = struct{}{}
	}
	slog.Info("Catalog seeded into ranking engine", "products", len(products))
}

func (e *Engine) handleRestore(votes []RestoredVote) int {
	for _, rv := range votes {
		e.ledger.Load(rv.Vote)
		e.trackProduct(rv.Vote.ProductID, rv.Category)
		e.dirty[rv.Category] = struct{}{}
	}

	e.aggregator.Rebuild(e.ledger.Snapshot())
	metrics.AggregatorRebuildsTotal.Inc()

	restored := e.ledger.Len()
	slog.Info("Vote ledger restored from journal", "votes", restored)
	return restored
}

func (e *Engine) handleTick() {
	e.tickCount++
	if len(e.pending) > 0 {
		e.flush()
	}
	if e.tickCount%auditEveryTicks == 0 {
		e.audit()
	}
}

// flush recomputes every still-dirty pending category, then delivers one
// coalesced notification covering the whole batch.
func (e *Engine) flush() {
	cats := make([]string, 0, len(e.pending))
	for cat := range e.pending {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		if _, isDirty := e.dirty[cat]; isDirty {
			e.recompute(cat)
		}
	}
	e.pending = make(map[string]struct{})

	if e.notifier != nil {
		e.notifier.Notify(cats)
	}
	metrics.RankingNotificationsTotal.Inc()
}

// refreshIfStale recomputes a dirty category when the debounce window has
// elapsed since its last recomputation. Reads inside the window serve the
// cached (possibly stale) ranking; the next tick catches up.
func (e *Engine) refreshIfStale(category string) {
	if _, isDirty := e.dirty[category]; !isDirty {
		return
	}
	if e.clock.Since(e.lastRecompute[category]) >= e.debounce {
		e.recompute(category)
	}
}

func (e *Engine) recompute(category string) {
	start := e.clock.Now()

	ids := e.members[category]
	entries := make([]domain.RankedEntry, 0, len(ids))
	for id := range ids {
		stats, _ := e.aggregator.Get(id)
		entries = append(entries, domain.RankedEntry{
			ProductID: id,
			NetScore:  stats.NetScore,
			Category:  category,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].NetScore != entries[j].NetScore {
			return entries[i].NetScore > entries[j].NetScore
		}
		return entries[i].ProductID < entries[j].ProductID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	e.rankings[category] = entries
	delete(e.dirty, category)
	e.lastRecompute[category] = start

	metrics.RankingRecomputesTotal.Inc()
	metrics.RankingRecomputeDuration.Observe(e.clock.Since(start).Seconds())
}

// audit verifies the maintained aggregates against a full ledger snapshot
// and self-heals with a rebuild on divergence. Callers never see an error;
// worst case the next reads serve rankings rebuilt from the ledger.
func (e *Engine) audit() {
	snapshot := e.ledger.Snapshot()
	if e.aggregator.Verify(snapshot) {
		return
	}

	slog.Error("Aggregate state diverged from ledger, rebuilding", "ledger_votes", len(snapshot))
	metrics.AggregatorDivergenceTotal.Inc()
	metrics.AggregatorRebuildsTotal.Inc()

	e.aggregator.Rebuild(snapshot)
	for cat := range e.members {
		e.dirty[cat] = struct{}{}
		e.pending[cat] = struct{}{}
	}
}

func (e *Engine) trackProduct(productID, category string) {
	if prev, ok := e.categories[productID]; ok {
		if prev == category {
			return
		}
		delete(e.members[prev], productID)
		e.dirty[prev] = struct{}{}
	}
	e.categories[productID] = category
	if e.members[category] == nil {
		e.members[category] = make(map[string]struct{})
	}
	e.members[category][productID] = struct{}{}
}

func copyRanking(entries []domain.RankedEntry) []domain.RankedEntry {
	out := make([]domain.RankedEntry, len(entries))
	copy(out, entries)
	return out
}

// --- Public API ---

// ApplyVote linearizes the vote into the ledger and returns the updated
// stats plus whether the submission changed anything.
func (e *Engine) ApplyVote(userID, productID, category string, direction domain.Direction) (domain.ProductStats, bool) {
	replyCh := make(chan applyVoteResult, 1)
	e.cmdCh <- cmdApplyVote{
		userID:    userID,
		productID: productID,
		category:  category,
		direction: direction,
		replyCh:   replyCh,
	}
	result := <-replyCh
	return result.stats, result.applied
}

// Stats returns the maintained stats for a product. The bool reports
// whether the engine has ever seen the product.
func (e *Engine) Stats(productID string) (domain.ProductStats, bool) {
	replyCh := make(chan statsResult, 1)
	e.cmdCh <- cmdGetStats{productID: productID, replyCh: replyCh}
	result := <-replyCh
	return result.stats, result.known
}

// Ranking returns the current ranking for one category.
func (e *Engine) Ranking(category string) []domain.RankedEntry {
	replyCh := make(chan []domain.RankedEntry, 1)
	e.cmdCh <- cmdGetRanking{category: category, replyCh: replyCh}
	return <-replyCh
}

// AllRankings returns every category's ranking, categories in ascending
// order, entries in rank order within each category.
func (e *Engine) AllRankings() []domain.RankedEntry {
	replyCh := make(chan []domain.RankedEntry, 1)
	e.cmdCh <- cmdGetAllRankings{replyCh: replyCh}
	return <-replyCh
}

// Seed registers catalog products so they appear in rankings before their
// first vote. Blocks until the actor has absorbed the batch.
func (e *Engine) Seed(products []domain.Product) {
	replyCh := make(chan struct{}, 1)
	e.cmdCh <- cmdSeed{products: products, replyCh: replyCh}
	<-replyCh
}

// Restore loads journaled votes and rebuilds all derived state. Returns
// the number of live votes after the load.
func (e *Engine) Restore(votes []RestoredVote) int {
	replyCh := make(chan int, 1)
	e.cmdCh <- cmdRestore{votes: votes, replyCh: replyCh}
	return <-replyCh
}

// Stop shuts the actor down and waits for it to exit.
func (e *Engine) Stop() {
	doneCh := make(chan struct{})
	e.cmdCh <- cmdStop{doneCh: doneCh}
	<-doneCh
}
