// Package cache keeps recently used course data in memory in front of the store.
package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
	"github.com/trentd187/golf-league-matchups/internal/store"
)

const (
	// DefaultCourseHolesSize is used when a non-positive size is configured.
	DefaultCourseHolesSize = 64
	// DefaultCourseHolesTTL is used when a non-positive TTL is configured.
	DefaultCourseHolesTTL = 10 * time.Minute
)

// CourseHoles is a read-through LRU cache of course holes. Every score entry rescores
// its match, and a course's holes almost never change, so this saves one query per
// keystroke. Entries expire after the TTL, so an edited course is seen again without
// anyone calling Invalidate. It is safe for concurrent use.
type CourseHoles struct {
	cache *expirable.LRU[int64, []handicap.Hole]
	next  store.HoleSource

	hits   atomic.Int64
	misses atomic.Int64
}

var _ store.HoleSource = (*CourseHoles)(nil)

// NewCourseHoles caches up to size courses read from next, each for at most ttl.
func NewCourseHoles(size int, ttl time.Duration, next store.HoleSource) *CourseHoles {
	if size <= 0 {
		size = DefaultCourseHolesSize
	}
	if ttl <= 0 {
		ttl = DefaultCourseHolesTTL
	}
	return &CourseHoles{
		cache: expirable.NewLRU[int64, []handicap.Hole](size, nil, ttl),
		next:  next,
	}
}

// CourseHoles implements store.HoleSource. Callers get their own copy of the slice.
func (c *CourseHoles) CourseHoles(ctx context.Context, courseID int64) ([]handicap.Hole, error) {
	if holes, ok := c.cache.Get(courseID); ok {
		c.hits.Add(1)
		return slices.Clone(holes), nil
	}
	c.misses.Add(1)
	holes, err := c.next.CourseHoles(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(courseID, slices.Clone(holes))
	return holes, nil
}

// Invalidate drops a course, so the next read goes to the store. Call it after editing
// the course's holes.
func (c *CourseHoles) Invalidate(courseID int64) {
	c.cache.Remove(courseID)
}

// Stats returns the hit and miss counts since start.
func (c *CourseHoles) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
