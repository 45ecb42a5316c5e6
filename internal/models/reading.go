package models

import "time"

// ReadingType identifies one biometric measurement category.
type ReadingType string

const (
	TypeHeartRate            ReadingType = "heart_rate"
	TypeHeartRateVariability ReadingType = "heart_rate_variability"
	TypeRestingHeartRate     ReadingType = "resting_heart_rate"
	TypeSleepAnalysis        ReadingType = "sleep_analysis"
	TypeBodyTemperature      ReadingType = "body_temperature"
	TypeRespiratoryRate      ReadingType = "respiratory_rate"
	TypeBloodPressure        ReadingType = "blood_pressure"
	TypeActiveEnergy         ReadingType = "active_energy"
	TypeStepCount            ReadingType = "step_count"

	// TypeStressLevel is derived from HRV and heart rate by the aggregator.
	// It is never fetched from a platform source directly.
	TypeStressLevel ReadingType = "stress_level"
)

// PrimaryTypes are the types the aggregator fans out over when building an
// analysis snapshot. Stress is derived from these, not fetched.
func PrimaryTypes() []ReadingType {
	return []ReadingType{
		TypeHeartRate,
		TypeHeartRateVariability,
		TypeRestingHeartRate,
		TypeSleepAnalysis,
		TypeBodyTemperature,
		TypeRespiratoryRate,
	}
}

// AllTypes lists every sourceable type (excludes the derived stress level).
func AllTypes() []ReadingType {
	return []ReadingType{
		TypeHeartRate,
		TypeHeartRateVariability,
		TypeRestingHeartRate,
		TypeSleepAnalysis,
		TypeBodyTemperature,
		TypeRespiratoryRate,
		TypeBloodPressure,
		TypeActiveEnergy,
		TypeStepCount,
	}
}

// ParseReadingType maps a wire string to a known type.
func ParseReadingType(s string) (ReadingType, bool) {
	t := ReadingType(s)
	if t == TypeStressLevel {
		return t, true
	}
	for _, known := range AllTypes() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Reading is one biometric sample. Immutable once created. Duplicates of the
// same type at the same timestamp are tolerated, not deduplicated.
type Reading struct {
	Type      ReadingType    `json:"type"`
	Value     float64        `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
	Unit      string         `json:"unit"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CycleDay returns the day (0-27) within a nominal 28-day cycle, keyed to
// days since the Unix epoch so that synthetic shapes and cycle-phase
// correlations agree on the phase of any given timestamp.
func CycleDay(ts time.Time) int {
	days := ts.Unix() / 86400
	return int(days % 28)
}
