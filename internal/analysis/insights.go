package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// InsightGenerator turns aggregate statistics into human-facing, actionable
// statements. Rule-based: each rule is independent, nothing is deduplicated
// or ranked across categories, and the returned order is insertion order
// (heart rate before sleep).
type InsightGenerator struct {
	patterns *PatternAnalyzer
}

// NewInsightGenerator creates an insight generator.
func NewInsightGenerator() *InsightGenerator {
	return &InsightGenerator{
		patterns: NewPatternAnalyzer(),
	}
}

// Generate evaluates every rule against the snapshot.
func (g *InsightGenerator) Generate(analysis *models.BiometricAnalysis) []models.Insight {
	var insights []models.Insight

	hrInfo := g.patterns.AnalyzeSeries(models.TypeHeartRate, analysis.Readings[models.TypeHeartRate])
	if hrInfo.SampleCount > 0 && hrInfo.Average > 80 {
		insights = append(insights, models.Insight{
			ID:       uuid.New().String(),
			Type:     "elevated_heart_rate",
			Category: "cardiovascular",
			Title:    "Elevated average heart rate",
			Description: fmt.Sprintf(
				"Your average heart rate over this period was %.0f bpm, which is above the typical resting range.",
				hrInfo.Average),
			Actionable: true,
			Recommendations: []string{
				"Consider stress-reduction techniques such as breathing exercises",
				"Make sure you are staying hydrated throughout the day",
				"Track caffeine intake and timing",
			},
			Confidence: 0.7,
		})
	}

	sleepInfo := g.patterns.AnalyzeSeries(models.TypeSleepAnalysis, analysis.Readings[models.TypeSleepAnalysis])
	if sleepInfo.SampleCount > 0 && sleepInfo.Average < 0.7 {
		insights = append(insights, models.Insight{
			ID:       uuid.New().String(),
			Type:     "sleep_quality",
			Category: "sleep",
			Title:    "Sleep quality could improve",
			Description: fmt.Sprintf(
				"Your average sleep quality score was %.2f, below the restorative threshold of 0.70.",
				sleepInfo.Average),
			Actionable: true,
			Recommendations: []string{
				"Keep a consistent bedtime and wake time",
				"Avoid screens for an hour before bed",
				"Keep the bedroom cool and dark",
			},
			Confidence: 0.6,
		})
	}

	return insights
}
