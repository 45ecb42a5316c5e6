package aggregator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ronospace/Flow-Ai-sub006/internal/cache"
	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// Aggregator assembles BiometricAnalysis snapshots by fanning out concurrent
// range queries across the primary reading types and deriving the stress
// series from the HRV and heart-rate results.
type Aggregator struct {
	cache  *cache.RangeCache
	logger *zap.Logger
}

// New creates an aggregator over the given range cache.
func New(c *cache.RangeCache, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		cache:  c,
		logger: logger,
	}
}

// Analyze builds a fresh snapshot for [start, end). Queries for all primary
// types run concurrently; a failure in one type yields partial results for
// that type, never an aborted snapshot.
func (a *Aggregator) Analyze(ctx context.Context, start, end time.Time) (*models.BiometricAnalysis, error) {
	began := time.Now()
	defer func() {
		metrics.AnalyzeDuration.Observe(time.Since(began).Seconds())
	}()

	readings := make(map[models.ReadingType][]models.Reading)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range models.PrimaryTypes() {
		t := t
		g.Go(func() error {
			rs, err := a.cache.Get(gctx, t, start, end)
			if err != nil {
				// Partial results: log and keep the other queries going.
				a.logger.Warn("Range query failed during analysis",
					zap.String("type", string(t)),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			readings[t] = rs
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors, but Wait also orders memory: every
	// readings write happens before the map is read below.
	_ = g.Wait()

	readings[models.TypeStressLevel] = deriveStress(
		readings[models.TypeHeartRateVariability],
		readings[models.TypeHeartRate],
	)

	analysis := &models.BiometricAnalysis{
		Start:        start,
		End:          end,
		Readings:     readings,
		Correlations: computeCorrelations(readings),
		GeneratedAt:  time.Now(),
	}

	a.logger.Debug("Assembled analysis snapshot",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("types", len(readings)),
	)
	return analysis, nil
}

// QueryRange serves a single-type range query through the cache. Used by the
// realtime monitor's poll cycle and by the readings API.
func (a *Aggregator) QueryRange(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	return a.cache.Get(ctx, t, start, end)
}

// deriveStress zips the HRV and heart-rate series pairwise into a 0-10 stress
// score, timestamped at the HRV sample and truncated to the shorter series.
func deriveStress(hrv, hr []models.Reading) []models.Reading {
	n := len(hrv)
	if len(hr) < n {
		n = len(hr)
	}

	stress := make([]models.Reading, 0, n)
	for i := 0; i < n; i++ {
		raw := ((100-hrv[i].Value)/100 + (hr[i].Value-60)/100) / 2
		if raw < 0 {
			raw = 0
		}
		if raw > 1 {
			raw = 1
		}
		stress = append(stress, models.Reading{
			Type:      models.TypeStressLevel,
			Value:     raw * 10,
			Timestamp: hrv[i].Timestamp,
			Unit:      "score",
		})
	}
	return stress
}
