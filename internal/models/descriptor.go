package models

import "time"

// Descriptor holds the per-type sampling and clinical parameters consulted by
// the synthetic generator, the pattern analyzer and the anomaly detector.
// Keeping these in one table avoids repeating type switches across components.
type Descriptor struct {
	Unit    string
	Cadence time.Duration // natural sampling cadence

	// Anomaly bands. A value outside (NormalLow, NormalHigh) is flagged;
	// outside (SevereLow, SevereHigh) it is flagged as high severity.
	// HasThresholds is false for types without clinical bands.
	HasThresholds bool
	NormalLow     float64
	NormalHigh    float64
	SevereLow     float64
	SevereHigh    float64
}

var descriptors = map[ReadingType]Descriptor{
	TypeHeartRate: {
		Unit:          "bpm",
		Cadence:       time.Hour,
		HasThresholds: true,
		NormalLow:     50,
		NormalHigh:    100,
		SevereLow:     40,
		SevereHigh:    120,
	},
	TypeHeartRateVariability: {
		Unit:    "ms",
		Cadence: 150 * time.Minute,
	},
	TypeRestingHeartRate: {
		Unit:    "bpm",
		Cadence: 24 * time.Hour,
	},
	TypeSleepAnalysis: {
		Unit:    "score",
		Cadence: 24 * time.Hour,
	},
	TypeBodyTemperature: {
		Unit:          "°F",
		Cadence:       24 * time.Hour,
		HasThresholds: true,
		NormalLow:     97.0,
		NormalHigh:    99.5,
		SevereLow:     96.0,
		SevereHigh:    101.0,
	},
	TypeRespiratoryRate: {
		Unit:    "breaths/min",
		Cadence: time.Hour,
	},
	TypeBloodPressure: {
		Unit:    "mmHg",
		Cadence: 24 * time.Hour,
	},
	TypeActiveEnergy: {
		Unit:    "kcal",
		Cadence: 24 * time.Hour,
	},
	TypeStepCount: {
		Unit:    "count",
		Cadence: 24 * time.Hour,
	},
	TypeStressLevel: {
		Unit:    "score",
		Cadence: 150 * time.Minute,
	},
}

// DescriptorFor returns the descriptor for a reading type.
func DescriptorFor(t ReadingType) (Descriptor, bool) {
	d, ok := descriptors[t]
	return d, ok
}
