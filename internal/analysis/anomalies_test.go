package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

func analysisWith(t models.ReadingType, unit string, values ...float64) *models.BiometricAnalysis {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	readings := make([]models.Reading, 0, len(values))
	for i, v := range values {
		readings = append(readings, models.Reading{
			Type:      t,
			Value:     v,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Unit:      unit,
		})
	}
	return &models.BiometricAnalysis{
		Readings: map[models.ReadingType][]models.Reading{t: readings},
	}
}

func TestAnomalyDetector_HeartRateExactBoundaries(t *testing.T) {
	d := NewAnomalyDetector()

	// 100 sits on the band edge and is not flagged; 100.1 is medium;
	// 120.1 crosses the severe band and is high
	anomalies := d.Detect(analysisWith(models.TypeHeartRate, "bpm", 100, 100.1, 120.1))

	require.Len(t, anomalies, 2)

	bySeverity := map[models.Severity]float64{}
	for _, a := range anomalies {
		bySeverity[a.Severity] = a.Value
		assert.Equal(t, models.TypeHeartRate, a.Type)
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Description)
	}
	assert.Equal(t, 100.1, bySeverity[models.SeverityMedium])
	assert.Equal(t, 120.1, bySeverity[models.SeverityHigh])
}

func TestAnomalyDetector_HeartRateLowBand(t *testing.T) {
	d := NewAnomalyDetector()

	anomalies := d.Detect(analysisWith(models.TypeHeartRate, "bpm", 50, 49.9, 39.9))

	require.Len(t, anomalies, 2)
	bySeverity := map[models.Severity]float64{}
	for _, a := range anomalies {
		bySeverity[a.Severity] = a.Value
	}
	assert.Equal(t, 49.9, bySeverity[models.SeverityMedium])
	assert.Equal(t, 39.9, bySeverity[models.SeverityHigh])
}

func TestAnomalyDetector_BodyTemperatureBands(t *testing.T) {
	d := NewAnomalyDetector()

	anomalies := d.Detect(analysisWith(models.TypeBodyTemperature, "°F", 98.6, 99.5, 99.6, 101.1, 96.9, 95.9))

	require.Len(t, anomalies, 4)

	severities := map[float64]models.Severity{}
	for _, a := range anomalies {
		severities[a.Value] = a.Severity
	}
	assert.Equal(t, models.SeverityMedium, severities[99.6])
	assert.Equal(t, models.SeverityHigh, severities[101.1])
	assert.Equal(t, models.SeverityMedium, severities[96.9])
	assert.Equal(t, models.SeverityHigh, severities[95.9])
}

func TestAnomalyDetector_UnthresholdedTypesIgnored(t *testing.T) {
	d := NewAnomalyDetector()

	// HRV has no clinical band in the descriptor table
	anomalies := d.Detect(analysisWith(models.TypeHeartRateVariability, "ms", 1, 500))
	assert.Empty(t, anomalies)
}

func TestAnomalyDetector_OneAnomalyPerReading(t *testing.T) {
	d := NewAnomalyDetector()

	// a severely out-of-band reading produces exactly one record
	anomalies := d.Detect(analysisWith(models.TypeHeartRate, "bpm", 150))
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)
}

func TestAnomalyDetector_EmptyAnalysis(t *testing.T) {
	d := NewAnomalyDetector()

	anomalies := d.Detect(&models.BiometricAnalysis{
		Readings: map[models.ReadingType][]models.Reading{},
	})
	assert.Empty(t, anomalies)
}
