package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/rankpulse/internal/domain"
	apperrors "github.com/pscheid92/rankpulse/internal/errors"
	"github.com/pscheid92/rankpulse/internal/version"
)

const readyCheckTimeout = 2 * time.Second

type voteRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Direction string `json:"direction"`
}

func (s *Server) handleSubmitVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("malformed request body")
	}

	stats, err := s.app.SubmitVote(c.Request().Context(), req.UserID, req.ProductID, req.Direction)
	if err != nil {
		return mapDomainError(err).
			WithField("user_id", req.UserID).
			WithField("product_id", req.ProductID)
	}

	if err := c.JSON(http.StatusOK, stats); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleProducts(c echo.Context) error {
	category := c.QueryParam("category")

	entries, err := s.app.Products(c.Request().Context(), category)
	if err != nil {
		return mapDomainError(err).WithField("category", category)
	}
	if entries == nil {
		entries = []domain.RankedEntry{}
	}

	if err := c.JSON(http.StatusOK, entries); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleProductStats(c echo.Context) error {
	productID := c.Param("id")

	stats, err := s.app.ProductStats(c.Request().Context(), productID)
	if err != nil {
		return mapDomainError(err).WithField("product_id", productID)
	}

	if err := c.JSON(http.StatusOK, stats); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleActiveUsers(c echo.Context) error {
	users := s.app.ActiveUsers()

	if err := c.JSON(http.StatusOK, map[string]any{"users": users, "count": len(users)}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "build": version.Get()})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyCheckTimeout)
	defer cancel()

	for name, check := range s.readyChecks {
		if err := check(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"failed": name,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func mapDomainError(err error) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrInvalidVote):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, domain.ErrUnknownProduct):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return apperrors.NotFoundError(err.Error())
	default:
		return apperrors.InternalError("request failed", err)
	}
}
