package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/bus"
	"github.com/pscheid92/rankpulse/internal/catalog"
	"github.com/pscheid92/rankpulse/internal/config"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/journal"
	"github.com/pscheid92/rankpulse/internal/logging"
	"github.com/pscheid92/rankpulse/internal/ranking"
	"github.com/pscheid92/rankpulse/internal/server"
	"github.com/pscheid92/rankpulse/internal/version"
)

const (
	catalogCacheTTL      = 10 * time.Second
	catalogCacheEviction = 1 * time.Minute
	journalBufferSize    = 1024
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupCatalog(cfg *config.Config, clock clockwork.Clock, readyChecks map[string]server.ReadyCheck) (domain.Catalog, func()) {
	if cfg.CatalogFile != "" {
		cat, err := catalog.LoadFromFile(cfg.CatalogFile)
		if err != nil {
			slog.Error("Failed to load catalog file", "path", cfg.CatalogFile, "error", err)
			os.Exit(1)
		}
		return cat, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := catalog.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := catalog.EnsureSchema(ctx, pool); err != nil {
		slog.Error("Failed to ensure catalog schema", "error", err)
		os.Exit(1)
	}

	readyChecks["postgres"] = pool.Ping

	cache := catalog.NewCache(catalog.NewPostgresCatalog(pool), catalogCacheTTL, clock)
	stopEviction := cache.StartEvictionTimer(catalogCacheEviction)

	cleanup := func() {
		stopEviction()
		pool.Close()
	}
	return cache, cleanup
}

func setupJournal(cfg *config.Config, readyChecks map[string]server.ReadyCheck) (domain.VoteJournal, func()) {
	if cfg.RedisURL == "" {
		slog.Info("Journaling disabled, votes will not survive restarts")
		return nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := journal.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	readyChecks["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}

	return journal.NewRedisJournal(client), func() { _ = client.Close() }
}

func runGracefulShutdown(srv *server.Server, svc *ranking.Service, b *bus.Bus, writer *journal.Writer) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		svc.Stop()
		b.Stop()
		if writer != nil {
			writer.Stop()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	build := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", build.Version, "commit", build.Commit)

	readyChecks := make(map[string]server.ReadyCheck)

	cat, cleanupCatalog := setupCatalog(cfg, clock, readyChecks)
	defer cleanupCatalog()

	voteJournal, cleanupJournal := setupJournal(cfg, readyChecks)
	defer cleanupJournal()

	notificationBus := bus.NewBus()
	engine := ranking.NewEngine(notificationBus, clock, cfg.DebounceWindow)
	engine.Start()

	var writer *journal.Writer
	var sink ranking.VoteSink
	if voteJournal != nil {
		writer = journal.NewWriter(voteJournal, journalBufferSize)
		sink = writer
	}

	activity := ranking.NewActivityTracker(cfg.ActivityWindow, clock)
	svc := ranking.NewService(cat, engine, activity, notificationBus, sink, clock)

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.SeedFromCatalog(startupCtx); err != nil {
		slog.Error("Failed to seed rankings from catalog", "error", err)
		os.Exit(1)
	}
	if voteJournal != nil {
		restored, err := svc.RestoreFromJournal(startupCtx, voteJournal)
		if err != nil {
			slog.Error("Failed to restore votes from journal", "error", err)
			os.Exit(1)
		}
		slog.Info("Restored votes from journal", "count", restored)
	}
	cancel()

	srv := server.NewServer(cfg, svc, clock, readyChecks)

	done := runGracefulShutdown(srv, svc, notificationBus, writer)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
