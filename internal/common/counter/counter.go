// Package counter enforces the max-daily-posts cap.
package counter

import (
	"context"
	"sync"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/metrics"
)

// DailyCounter tracks publishes per calendar day in a fixed timezone.
//
// Reserve is an atomic check-then-increment: it either takes one slot of
// today's budget and returns the day it was charged to, or returns a
// DAILY_CAP_REACHED error without changing the count. Release gives a slot
// back after a failed publish.
type DailyCounter interface {
	Reserve(ctx context.Context) (day string, err error)
	Release(ctx context.Context, day string) error
	Count(ctx context.Context) (int, error)
	Remaining(ctx context.Context) (int, error)
	Max() int
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

const dayLayout = "2006-01-02"

func dayKey(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(dayLayout)
}

// MemoryCounter is a process-local DailyCounter.
type MemoryCounter struct {
	mu    sync.Mutex
	max   int
	loc   *time.Location
	now   Clock
	day   string
	count int
}

// NewMemoryCounter creates a counter allowing max publishes per day in loc.
func NewMemoryCounter(max int, loc *time.Location, now Clock) *MemoryCounter {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{max: max, loc: loc, now: now}
}

// rollover resets the count when the day changed. Caller holds mu.
func (c *MemoryCounter) rollover() string {
	today := dayKey(c.now(), c.loc)
	if today != c.day {
		c.day = today
		c.count = 0
	}
	return today
}

func (c *MemoryCounter) Reserve(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.rollover()
	if c.count >= c.max {
		return today, errors.NewDailyCapReachedError(today, c.max)
	}
	c.count++
	metrics.DailyPosts.Set(float64(c.count))
	return today, nil
}

func (c *MemoryCounter) Release(_ context.Context, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover()
	// a reservation from a previous day no longer counts
	if day == c.day && c.count > 0 {
		c.count--
		metrics.DailyPosts.Set(float64(c.count))
	}
	return nil
}

func (c *MemoryCounter) Count(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover()
	return c.count, nil
}

func (c *MemoryCounter) Remaining(ctx context.Context) (int, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n >= c.max {
		return 0, nil
	}
	return c.max - n, nil
}

func (c *MemoryCounter) Max() int {
	return c.max
}
