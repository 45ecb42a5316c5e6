package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// SyntheticGenerator produces plausible readings when no platform source is
// available. Deterministic shape, non-deterministic value: each type follows
// a hand-tuned model keyed to a nominal 28-day cycle, plus uniform jitter.
//
// The generator emits one sample per the type's natural cadence across
// [start, end) and is the only component guaranteeing that a valid range
// never produces an empty result set.
type SyntheticGenerator struct{}

// NewSyntheticGenerator creates a synthetic fallback source.
func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

func (g *SyntheticGenerator) Name() string { return "synthetic" }

// Query implements DataSource. It never fails.
func (g *SyntheticGenerator) Query(_ context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	return g.Generate(t, start, end), nil
}

// Generate produces samples for [start, end) at the type's cadence.
func (g *SyntheticGenerator) Generate(t models.ReadingType, start, end time.Time) []models.Reading {
	desc, ok := models.DescriptorFor(t)
	if !ok {
		return nil
	}

	var readings []models.Reading
	for ts := start; ts.Before(end); ts = ts.Add(desc.Cadence) {
		readings = append(readings, g.sample(t, desc, ts))
	}
	return readings
}

func (g *SyntheticGenerator) sample(t models.ReadingType, desc models.Descriptor, ts time.Time) models.Reading {
	cycleDay := models.CycleDay(ts)
	phase := 2 * math.Pi * float64(cycleDay) / 28

	var value float64
	var metadata map[string]any

	switch t {
	case models.TypeHeartRate:
		// 70-90 bpm band: baseline plus cycle sinusoid plus jitter
		value = 80 + 5*math.Sin(phase) + jitter(5)
	case models.TypeHeartRateVariability:
		// HRV runs roughly opposite to the heart-rate curve
		value = 45 + 8*math.Sin(phase+math.Pi) + jitter(6)
	case models.TypeRestingHeartRate:
		value = 62 + 3*math.Sin(phase) + jitter(3)
	case models.TypeBodyTemperature:
		// luteal bump on cycle days 12-16
		value = 98.6 + jitter(0.2)
		if cycleDay >= 12 && cycleDay <= 16 {
			value += 0.5
		}
		metadata = map[string]any{"cycle_day": cycleDay}
	case models.TypeSleepAnalysis:
		// quality score 0.6-1.0 with attached duration
		value = 0.6 + 0.4*rand.Float64()
		metadata = map[string]any{
			"duration_hours": 6.5 + 2*rand.Float64(),
			"cycle_day":      cycleDay,
		}
	case models.TypeRespiratoryRate:
		value = 14 + 1.5*math.Sin(phase) + jitter(1.5)
	case models.TypeBloodPressure:
		value = 112 + 4*math.Sin(phase) + jitter(6)
		metadata = map[string]any{"diastolic": 72 + jitter(5)}
	case models.TypeActiveEnergy:
		value = 350 + 150*rand.Float64()
	case models.TypeStepCount:
		value = math.Floor(6000 + 4000*rand.Float64())
	case models.TypeStressLevel:
		value = clamp(4+2*math.Sin(phase)+jitter(2), 0, 10)
	default:
		value = jitter(1)
	}

	return models.Reading{
		Type:      t,
		Value:     value,
		Timestamp: ts,
		Unit:      desc.Unit,
		Metadata:  metadata,
	}
}

// jitter returns a uniform value in [-amplitude, amplitude].
func jitter(amplitude float64) float64 {
	return (2*rand.Float64() - 1) * amplitude
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Capabilities describes the synthetic source: everything readable, nothing
// writable, no realtime hardware.
func (g *SyntheticGenerator) Capabilities() models.Capabilities {
	return models.Capabilities{
		SupportedTypes: models.AllTypes(),
		CanWrite:       false,
		HasRealtime:    false,
		DeviceModel:    "synthetic",
	}
}
