package source

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// CompositeSource tries the native platform source first and falls back to
// the synthetic generator on any failure. The fallback is a first-class
// branch on the returned error, not a caught panic: platform failures are
// converted to "use fallback" here and never cross upward.
//
// A nil primary means the session runs synthetic-only (permission denied or
// no bridge configured).
type CompositeSource struct {
	primary  DataSource
	fallback *SyntheticGenerator
	logger   *zap.Logger
}

// NewCompositeSource creates the composite. primary may be nil.
func NewCompositeSource(primary DataSource, fallback *SyntheticGenerator, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *CompositeSource) Name() string { return "composite" }

// Query implements DataSource. It never returns an error: the synthetic
// generator guarantees a result for every valid range.
func (s *CompositeSource) Query(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	if s.primary == nil {
		metrics.FallbacksTotal.WithLabelValues(string(t)).Inc()
		return s.fallback.Generate(t, start, end), nil
	}

	readings, err := s.primary.Query(ctx, t, start, end)
	if err != nil {
		metrics.FallbacksTotal.WithLabelValues(string(t)).Inc()
		s.logger.Warn("Platform query failed, using synthetic data",
			zap.String("type", string(t)),
			zap.String("source", s.primary.Name()),
			zap.Error(err),
		)
		return s.fallback.Generate(t, start, end), nil
	}
	return readings, nil
}
