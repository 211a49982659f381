package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Vote and ranking API
	s.echo.POST("/api/votes", s.handleSubmitVote)
	s.echo.GET("/api/products", s.handleProducts)
	s.echo.GET("/api/products/:id/stats", s.handleProductStats)
	s.echo.GET("/api/users/active", s.handleActiveUsers)

	// Push path (WebSocket subscribers)
	s.echo.GET("/ws/updates", s.handleWebSocket)
}
