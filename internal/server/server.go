package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/rankpulse/internal/config"
	"github.com/pscheid92/rankpulse/internal/domain"
	apperrors "github.com/pscheid92/rankpulse/internal/errors"
)

// RankingAPI is the façade surface the transport layer exposes 1:1.
type RankingAPI interface {
	SubmitVote(ctx context.Context, userID, productID, direction string) (domain.ProductStats, error)
	Products(ctx context.Context, category string) ([]domain.RankedEntry, error)
	ProductStats(ctx context.Context, productID string) (domain.ProductStats, error)
	ActiveUsers() []string
	Subscribe(listener domain.Listener) uuid.UUID
	Unsubscribe(id uuid.UUID) error
}

// ReadyCheck pings one backing dependency for the readiness endpoint.
type ReadyCheck func(ctx context.Context) error

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	app         RankingAPI
	clock       clockwork.Clock
	readyChecks map[string]ReadyCheck
	wsClients   *clientRegistry
}

func NewServer(cfg *config.Config, app RankingAPI, clock clockwork.Clock, readyChecks map[string]ReadyCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		app:         app,
		clock:       clock,
		readyChecks: readyChecks,
		wsClients:   newClientRegistry(cfg.MaxSocketClients),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
