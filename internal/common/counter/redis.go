package counter

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const keyTTL = 48 * time.Hour

// reserveScript increments the day's counter only while it is below the cap.
// Returns the new count, or -1 when the cap is reached.
var reserveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return -1
end
current = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return current
`)

var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
  return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisClient is the subset of *redis.Client the counter needs.
type RedisClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisCounter shares the daily budget between processes through Redis.
type RedisCounter struct {
	rdb    RedisClient
	prefix string
	max    int
	loc    *time.Location
	now    Clock
}

// NewRedisCounter creates a counter storing one key per day under prefix.
func NewRedisCounter(rdb RedisClient, prefix string, max int, loc *time.Location, now Clock) *RedisCounter {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &RedisCounter{rdb: rdb, prefix: prefix, max: max, loc: loc, now: now}
}

func (c *RedisCounter) key(day string) string {
	return fmt.Sprintf("%s:%s", c.prefix, day)
}

func (c *RedisCounter) Reserve(ctx context.Context) (string, error) {
	day := dayKey(c.now(), c.loc)
	n, err := reserveScript.Run(ctx, c.rdb, []string{c.key(day)}, c.max, int(keyTTL.Seconds())).Int()
	if err != nil {
		return day, errors.NewCounterUnavailableError("redis", err)
	}
	if n < 0 {
		return day, errors.NewDailyCapReachedError(day, c.max)
	}
	metrics.DailyPosts.Set(float64(n))
	return day, nil
}

func (c *RedisCounter) Release(ctx context.Context, day string) error {
	n, err := releaseScript.Run(ctx, c.rdb, []string{c.key(day)}).Int()
	if err != nil {
		return errors.NewCounterUnavailableError("redis", err)
	}
	if day == dayKey(c.now(), c.loc) {
		metrics.DailyPosts.Set(float64(n))
	}
	return nil
}

func (c *RedisCounter) Count(ctx context.Context) (int, error) {
	day := dayKey(c.now(), c.loc)
	n, err := c.rdb.Get(ctx, c.key(day)).Int()
	if stderrors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewCounterUnavailableError("redis", err)
	}
	return n, nil
}

func (c *RedisCounter) Remaining(ctx context.Context) (int, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n >= c.max {
		return 0, nil
	}
	return c.max - n, nil
}

func (c *RedisCounter) Max() int {
	return c.max
}
