package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
	"github.com/ronospace/Flow-Ai-sub006/internal/source"
)

// entry holds the most recent fetch for one reading type, together with the
// window it was fetched for.
type entry struct {
	start    time.Time
	end      time.Time
	readings []models.Reading
}

// RangeCache is a read-through cache in front of the composite data source,
// keyed by reading type. An entry is served only when its stored window fully
// covers the requested range; a narrower cached window never shadows a wider
// request. Replacement is atomic per type: a fresh fetch replaces the whole
// entry, it is never merged.
//
// The cache filters on read. The underlying source is not trusted to have
// filtered to [start, end).
type RangeCache struct {
	mu      sync.Mutex
	entries map[models.ReadingType]entry
	source  source.DataSource
	logger  *zap.Logger
}

// New creates a range cache over the given source.
func New(src source.DataSource, logger *zap.Logger) *RangeCache {
	return &RangeCache{
		entries: make(map[models.ReadingType]entry),
		source:  src,
		logger:  logger,
	}
}

// Get returns all readings of type t with timestamp in [start, end).
func (c *RangeCache) Get(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	c.mu.Lock()
	if e, ok := c.entries[t]; ok && covers(e, start, end) {
		filtered := filterWindow(e.readings, start, end)
		if len(filtered) > 0 {
			c.mu.Unlock()
			metrics.CacheHitsTotal.WithLabelValues(string(t)).Inc()
			return filtered, nil
		}
	}
	c.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues(string(t)).Inc()

	// Fetch outside the lock: the source call may block on the platform
	// bridge. Concurrent fetches for the same type race; last writer wins.
	fresh, err := c.source.Query(ctx, t, start, end)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[t] = entry{start: start, end: end, readings: fresh}
	c.mu.Unlock()

	c.logger.Debug("Range cache refreshed",
		zap.String("type", string(t)),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("count", len(fresh)),
	)
	return filterWindow(fresh, start, end), nil
}

// covers reports whether the cached window fully contains [start, end).
func covers(e entry, start, end time.Time) bool {
	return !e.start.After(start) && !e.end.Before(end)
}

// filterWindow keeps readings with start <= timestamp < end.
func filterWindow(readings []models.Reading, start, end time.Time) []models.Reading {
	var out []models.Reading
	for _, r := range readings {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out
}
