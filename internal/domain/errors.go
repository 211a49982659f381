package domain

import "errors"

var (
	ErrInvalidVote          = errors.New("invalid vote")
	ErrUnknownProduct       = errors.New("unknown product")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
