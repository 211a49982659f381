package domain

import (
	"fmt"
	"time"
)

// Direction is the polarity of a vote. DirectionNone retracts a previously
// cast vote and removes the (user, product) pair from the ledger.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// ParseDirection validates a caller-supplied direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionNone:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("%w: direction %q", ErrInvalidVote, s)
	}
}

// Vote is the current vote cast by a user on a product. At most one live
// Vote exists per (UserID, ProductID) pair; a new vote for the same pair
// replaces the prior one.
type Vote struct {
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Direction Direction `json:"direction"`
	CastAt    time.Time `json:"castAt"`
}

// VoteDelta describes the counter adjustments a ledger mutation produced.
// Switching up→down yields {Up: -1, Down: +1} as one atomic unit; a
// repeated identical vote yields the zero delta.
type VoteDelta struct {
	Up   int
	Down int
}

// IsZero reports whether the delta carries no change. Zero deltas must not
// touch the aggregator or trigger notifications.
func (d VoteDelta) IsZero() bool {
	return d.Up == 0 && d.Down == 0
}

// DeltaBetween computes the counter delta for a direction transition.
func DeltaBetween(prev, next Direction) VoteDelta {
	if prev == next {
		return VoteDelta{}
	}

	var d VoteDelta
	switch prev {
	case DirectionUp:
		d.Up--
	case DirectionDown:
		d.Down--
	}
	switch next {
	case DirectionUp:
		d.Up++
	case DirectionDown:
		d.Down++
	}
	return d
}
