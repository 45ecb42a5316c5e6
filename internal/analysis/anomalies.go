package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// AnomalyDetector flags out-of-band readings against the fixed clinical
// bands in the per-type descriptor table, independent of patient baseline.
// Results are produced for immediate consumption, never stored.
type AnomalyDetector struct{}

// NewAnomalyDetector creates an anomaly detector.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{}
}

// Detect runs every thresholded type-check independently over the analyzed
// window. Boundaries are exact: a value sitting on the band edge is not
// flagged. A single reading produces at most one anomaly per type-check.
func (d *AnomalyDetector) Detect(analysis *models.BiometricAnalysis) []models.Anomaly {
	var anomalies []models.Anomaly
	for t, readings := range analysis.Readings {
		desc, ok := models.DescriptorFor(t)
		if !ok || !desc.HasThresholds {
			continue
		}
		for _, r := range readings {
			if a, flagged := checkReading(r, desc); flagged {
				anomalies = append(anomalies, a)
			}
		}
	}
	return anomalies
}

func checkReading(r models.Reading, desc models.Descriptor) (models.Anomaly, bool) {
	if r.Value >= desc.NormalLow && r.Value <= desc.NormalHigh {
		return models.Anomaly{}, false
	}

	severity := models.SeverityMedium
	if r.Value < desc.SevereLow || r.Value > desc.SevereHigh {
		severity = models.SeverityHigh
	}

	return models.Anomaly{
		ID:        uuid.New().String(),
		Type:      r.Type,
		Timestamp: r.Timestamp,
		Value:     r.Value,
		Severity:  severity,
		Description: fmt.Sprintf("%s %.1f %s outside expected range %g-%g %s",
			r.Type, r.Value, r.Unit, desc.NormalLow, desc.NormalHigh, desc.Unit),
	}, true
}
