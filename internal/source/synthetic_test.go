package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

func TestSyntheticGenerator_HeartRateCadence(t *testing.T) {
	g := NewSyntheticGenerator()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	readings := g.Generate(models.TypeHeartRate, start, end)

	// hourly cadence across a 24h window
	require.Len(t, readings, 24)

	for _, r := range readings {
		assert.Equal(t, models.TypeHeartRate, r.Type)
		assert.Equal(t, "bpm", r.Unit)
		assert.False(t, r.Timestamp.Before(start), "timestamp before window start")
		assert.True(t, r.Timestamp.Before(end), "timestamp at or past window end")
		// base 70-90 band plus jitter headroom
		assert.GreaterOrEqual(t, r.Value, 65.0)
		assert.LessOrEqual(t, r.Value, 95.0)
	}
}

func TestSyntheticGenerator_DailySleepWithDuration(t *testing.T) {
	g := NewSyntheticGenerator()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	readings := g.Generate(models.TypeSleepAnalysis, start, end)

	require.Len(t, readings, 3)
	for _, r := range readings {
		assert.GreaterOrEqual(t, r.Value, 0.6)
		assert.LessOrEqual(t, r.Value, 1.0)
		require.Contains(t, r.Metadata, "duration_hours")
		duration := r.Metadata["duration_hours"].(float64)
		assert.GreaterOrEqual(t, duration, 6.5)
		assert.LessOrEqual(t, duration, 8.5)
	}
}

func TestSyntheticGenerator_TemperatureLutealBump(t *testing.T) {
	g := NewSyntheticGenerator()

	// day 14 of the nominal cycle sits inside the bump window
	bumpDay := time.Unix(86400*(28*700+14), 0).UTC()
	require.Equal(t, 14, models.CycleDay(bumpDay))

	readings := g.Generate(models.TypeBodyTemperature, bumpDay, bumpDay.Add(24*time.Hour))
	require.Len(t, readings, 1)
	assert.GreaterOrEqual(t, readings[0].Value, 98.9-0.01)
	assert.LessOrEqual(t, readings[0].Value, 99.3+0.01)

	// day 2 has no bump
	baseDay := time.Unix(86400*(28*700+2), 0).UTC()
	require.Equal(t, 2, models.CycleDay(baseDay))

	readings = g.Generate(models.TypeBodyTemperature, baseDay, baseDay.Add(24*time.Hour))
	require.Len(t, readings, 1)
	assert.GreaterOrEqual(t, readings[0].Value, 98.4-0.01)
	assert.LessOrEqual(t, readings[0].Value, 98.8+0.01)
}

func TestSyntheticGenerator_HRVCadence(t *testing.T) {
	g := NewSyntheticGenerator()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	readings := g.Generate(models.TypeHeartRateVariability, start, end)

	// 150 minute cadence: ceil(24h / 2.5h) = 10 samples
	require.Len(t, readings, 10)
	assert.Equal(t, "ms", readings[0].Unit)
}

func TestSyntheticGenerator_ZeroWidthWindowIsEmpty(t *testing.T) {
	g := NewSyntheticGenerator()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	readings := g.Generate(models.TypeHeartRate, start, start)
	assert.Empty(t, readings)
}

func TestSyntheticGenerator_UnknownTypeIsEmpty(t *testing.T) {
	g := NewSyntheticGenerator()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	readings := g.Generate(models.ReadingType("bogus"), start, start.Add(time.Hour))
	assert.Empty(t, readings)
}
