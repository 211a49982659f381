package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultKey = "rankpulse:votes"

// fieldSep joins user and product ids into one hash field. The unit
// separator never appears in identifiers coming off the wire.
const fieldSep = "\x1f"

// Connect creates a redis client from a URL and verifies the connection.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// RedisJournal stores the live vote set in one redis hash: field
// user<sep>product, value direction|unixMilli. Field overwrites give
// last-write-wins per pair, so replay order never matters.
type RedisJournal struct {
	rdb *redis.Client
	key string
}

func NewRedisJournal(rdb *redis.Client) *RedisJournal {
	return &RedisJournal{rdb: rdb, key: defaultKey}
}

func (j *RedisJournal) Append(ctx context.Context, vote domain.Vote) error {
	field := vote.UserID + fieldSep + vote.ProductID

	if vote.Direction == domain.DirectionNone {
		if err := j.rdb.HDel(ctx, j.key, field).Err(); err != nil {
			return fmt.Errorf("failed to delete journal entry: %w", err)
		}
		return nil
	}

	value := fmt.Sprintf("%s|%d", vote.Direction, vote.CastAt.UnixMilli())
	if err := j.rdb.HSet(ctx, j.key, field, value).Err(); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

func (j *RedisJournal) Replay(ctx context.Context) ([]domain.Vote, error) {
	entries, err := j.rdb.HGetAll(ctx, j.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	votes := make([]domain.Vote, 0, len(entries))
	for field, value := range entries {
		vote, err := parseEntry(field, value)
		if err != nil {
			slog.Warn("Skipping malformed journal entry", "field", field, "error", err)
			continue
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

func parseEntry(field, value string) (domain.Vote, error) {
	userID, productID, ok := strings.Cut(field, fieldSep)
	if !ok || userID == "" || productID == "" {
		return domain.Vote{}, fmt.Errorf("malformed field")
	}

	dirStr, tsStr, ok := strings.Cut(value, "|")
	if !ok {
		return domain.Vote{}, fmt.Errorf("malformed value %q", value)
	}

	direction, err := domain.ParseDirection(dirStr)
	if err != nil {
		return domain.Vote{}, err
	}

	millis, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("malformed timestamp %q: %w", tsStr, err)
	}

	return domain.Vote{
		UserID:    userID,
		ProductID: productID,
		Direction: direction,
		CastAt:    time.UnixMilli(millis),
	}, nil
}
