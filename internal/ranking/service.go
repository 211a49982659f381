package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/bus"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

// VoteSink receives applied votes for write-behind persistence. Enqueue
// must never block; a nil sink disables journaling.
type VoteSink interface {
	Enqueue(vote domain.Vote)
}

// Service is the façade external callers use. It validates input, resolves
// catalog lookups in the caller's goroutine, and delegates to the engine
// actor. Nothing outside this package mutates vote state any other way.
type Service struct {
	catalog  domain.Catalog
	engine   *Engine
	activity *ActivityTracker
	bus      *bus.Bus
	sink     VoteSink
	clock    clockwork.Clock
}

// NewService creates the façade. sink may be nil when journaling is
// disabled.
func NewService(catalog domain.Catalog, engine *Engine, activity *ActivityTracker, b *bus.Bus, sink VoteSink, clock clockwork.Clock) *Service {
	return &Service{
		catalog:  catalog,
		engine:   engine,
		activity: activity,
		bus:      b,
		sink:     sink,
		clock:    clock,
	}
}

// SubmitVote validates and applies a vote, returning the updated stats for
// the product. Re-submitting an unchanged vote is side-effect-free: stats
// keep their timestamp, no notification fires, nothing is journaled.
func (s *Service) SubmitVote(ctx context.Context, userID, productID, direction string) (domain.ProductStats, error) {
	if userID == "" || productID == "" {
		metrics.VotesRejectedTotal.WithLabelValues("invalid").Inc()
		return domain.ProductStats{}, fmt.Errorf("%w: empty user or product id", domain.ErrInvalidVote)
	}

	dir, err := domain.ParseDirection(direction)
	if err != nil {
		metrics.VotesRejectedTotal.WithLabelValues("invalid").Inc()
		return domain.ProductStats{}, err
	}

	// Catalog lookups run here, in the caller's goroutine, never inside
	// the actor.
	exists, err := s.catalog.ProductExists(ctx, productID)
	if err != nil {
		return domain.ProductStats{}, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if !exists {
		metrics.VotesRejectedTotal.WithLabelValues("unknown_product").Inc()
		return domain.ProductStats{}, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, productID)
	}

	category, err := s.catalog.CategoryOf(ctx, productID)
	if err != nil {
		return domain.ProductStats{}, fmt.Errorf("catalog lookup failed: %w", err)
	}

	s.activity.Record(userID)

	stats, applied := s.engine.ApplyVote(userID, productID, category, dir)
	if applied && s.sink != nil {
		s.sink.Enqueue(domain.Vote{
			UserID:    userID,
			ProductID: productID,
			Direction: dir,
			CastAt:    stats.LastUpdated,
		})
	}
	return stats, nil
}

// Products returns the current ranking for one category, or for all
// categories merged (category ascending, rank ascending) when category is
// empty.
func (s *Service) Products(ctx context.Context, category string) ([]domain.RankedEntry, error) {
	if category == "" {
		return s.engine.AllRankings(), nil
	}
	return s.engine.Ranking(category), nil
}

// ProductStats returns the stats for one product. A catalog product with no
// votes yields zero-valued stats; an id the catalog does not know yields
// ErrUnknownProduct.
func (s *Service) ProductStats(ctx context.Context, productID string) (domain.ProductStats, error) {
	if productID == "" {
		return domain.ProductStats{}, fmt.Errorf("%w: empty product id", domain.ErrInvalidVote)
	}

	exists, err := s.catalog.ProductExists(ctx, productID)
	if err != nil {
		return domain.ProductStats{}, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if !exists {
		return domain.ProductStats{}, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, productID)
	}

	stats, _ := s.engine.Stats(productID)
	return stats, nil
}

// ActiveUsers returns the users seen inside the activity window.
func (s *Service) ActiveUsers() []string {
	return s.activity.Active()
}

// Subscribe registers a listener for coalesced change notifications.
func (s *Service) Subscribe(listener domain.Listener) uuid.UUID {
	return s.bus.Subscribe(listener)
}

// Unsubscribe removes a subscription by handle.
func (s *Service) Unsubscribe(id uuid.UUID) error {
	return s.bus.Unsubscribe(id)
}

// SeedFromCatalog registers every catalog product with the engine so
// zero-vote products appear in rankings. Called once at startup.
func (s *Service) SeedFromCatalog(ctx context.Context) error {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}
	s.engine.Seed(products)
	return nil
}

// RestoreFromJournal replays the journal into the engine, resolving each
// product's category through the catalog. Votes on products the catalog no
// longer knows are skipped. Returns the number of live votes restored.
func (s *Service) RestoreFromJournal(ctx context.Context, journal domain.VoteJournal) (int, error) {
	votes, err := journal.Replay(ctx)
	if err != nil {
		return 0, fmt.Errorf("journal replay failed: %w", err)
	}
	if len(votes) == 0 {
		return 0, nil
	}

	categories := make(map[string]string)
	restored := make([]RestoredVote, 0, len(votes))
	for _, vote := range votes {
		category, ok := categories[vote.ProductID]
		if !ok {
			var err error
			category, err = s.catalog.CategoryOf(ctx, vote.ProductID)
			if errors.Is(err, domain.ErrUnknownProduct) {
				slog.Warn("Skipping journaled vote for unknown product", "product_id", vote.ProductID)
				continue
			}
			if err != nil {
				return 0, fmt.Errorf("catalog lookup failed during restore: %w", err)
			}
			categories[vote.ProductID] = category
		}
		restored = append(restored, RestoredVote{Vote: vote, Category: category})
	}

	return s.engine.Restore(restored), nil
}

// Stop shuts the engine actor down.
func (s *Service) Stop() {
	s.engine.Stop()
}
