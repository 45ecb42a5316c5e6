package analysis

import (
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// cyclicMinSamples is the naive cyclicity heuristic: a series is flagged
// cyclic once at least this many samples are present. Deliberately weak; a
// real periodicity test would need spectral analysis.
const cyclicMinSamples = 14

// trendRatio is the pairwise-transition dominance required before a series
// is classified as anything other than stable.
const trendRatio = 1.5

// PatternAnalyzer computes per-type summary statistics over an analysis
// window. Pure and synchronous; identical input always yields identical
// output.
type PatternAnalyzer struct{}

// NewPatternAnalyzer creates a pattern analyzer.
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Analyze summarises every series in the snapshot.
func (a *PatternAnalyzer) Analyze(analysis *models.BiometricAnalysis) map[models.ReadingType]models.PatternInfo {
	patterns := make(map[models.ReadingType]models.PatternInfo, len(analysis.Readings))
	for t, readings := range analysis.Readings {
		patterns[t] = a.AnalyzeSeries(t, readings)
	}
	return patterns
}

// AnalyzeSeries summarises one series.
func (a *PatternAnalyzer) AnalyzeSeries(t models.ReadingType, readings []models.Reading) models.PatternInfo {
	info := models.PatternInfo{
		Type:        t,
		Trend:       models.TrendStable,
		SampleCount: len(readings),
		Cyclic:      len(readings) >= cyclicMinSamples,
	}
	if len(readings) == 0 {
		return info
	}

	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	info.Average = sum / float64(len(readings))

	var sq float64
	for _, r := range readings {
		d := r.Value - info.Average
		sq += d * d
	}
	info.Variance = sq / float64(len(readings))

	info.Trend = classifyTrend(readings)
	return info
}

// classifyTrend walks consecutive pairs and counts strictly-increasing vs
// strictly-decreasing transitions. With fewer than 2 samples the trend is
// stable by convention.
func classifyTrend(readings []models.Reading) models.TrendDirection {
	if len(readings) < 2 {
		return models.TrendStable
	}

	var increasing, decreasing int
	for i := 1; i < len(readings); i++ {
		switch {
		case readings[i].Value > readings[i-1].Value:
			increasing++
		case readings[i].Value < readings[i-1].Value:
			decreasing++
		}
	}

	switch {
	case float64(increasing) > float64(decreasing)*trendRatio:
		return models.TrendIncreasing
	case float64(decreasing) > float64(increasing)*trendRatio:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
