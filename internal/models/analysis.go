package models

import "time"

// TrendDirection is the coarse direction of a series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Severity tiers for anomalies.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// BiometricAnalysis is the aggregate snapshot assembled for one requested
// window. Constructed fresh on every Analyze call; never mutated afterwards;
// owned exclusively by its caller.
type BiometricAnalysis struct {
	Start        time.Time                 `json:"start"`
	End          time.Time                 `json:"end"`
	Readings     map[ReadingType][]Reading `json:"readings"`
	Correlations map[string]float64        `json:"correlations"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// PatternInfo summarises one reading type within an analysis window.
type PatternInfo struct {
	Type        ReadingType    `json:"type"`
	Average     float64        `json:"average"`
	Variance    float64        `json:"variance"`
	Trend       TrendDirection `json:"trend"`
	Cyclic      bool           `json:"cyclic"`
	SampleCount int            `json:"sample_count"`
}

// Anomaly flags one out-of-band reading. Produced, never stored.
type Anomaly struct {
	ID          string      `json:"id"`
	Type        ReadingType `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	Value       float64     `json:"value"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
}

// Insight is a human-facing, optionally actionable statement derived from
// aggregate statistics.
type Insight struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Actionable      bool     `json:"actionable"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence,omitempty"`
}

// Capabilities describes what the current platform bridge can do. Queried
// once per session; not cached internally.
type Capabilities struct {
	HasNativeSourceA bool          `json:"has_native_source_a"`
	HasNativeSourceB bool          `json:"has_native_source_b"`
	SupportedTypes   []ReadingType `json:"supported_types"`
	CanWrite         bool          `json:"can_write"`
	HasRealtime      bool          `json:"has_realtime"`
	DeviceModel      string        `json:"device_model,omitempty"`
	OSVersion        string        `json:"os_version,omitempty"`
}
