package aggregator

import (
	"math"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// The five correlation keys every snapshot carries. Values are Pearson
// coefficients computed from the assembled series; a coefficient that cannot
// be computed (too few pairs, zero variance) is reported as 0.
const (
	CorrHRVCycle       = "hrv_cycle_correlation"
	CorrTempCycle      = "temperature_cycle_correlation"
	CorrSleepHRV       = "sleep_hrv_correlation"
	CorrStressHR       = "stress_heart_rate_correlation"
	CorrRestingHRCycle = "resting_heart_rate_cycle_correlation"
)

func computeCorrelations(readings map[models.ReadingType][]models.Reading) map[string]float64 {
	hrv := readings[models.TypeHeartRateVariability]
	temp := readings[models.TypeBodyTemperature]
	sleep := readings[models.TypeSleepAnalysis]
	stress := readings[models.TypeStressLevel]
	hr := readings[models.TypeHeartRate]
	restingHR := readings[models.TypeRestingHeartRate]

	return map[string]float64{
		CorrHRVCycle:       pearson(values(hrv), cyclePhases(hrv)),
		CorrTempCycle:      pearson(values(temp), cyclePhases(temp)),
		CorrSleepHRV:       pearson(values(sleep), values(hrv)),
		CorrStressHR:       pearson(values(stress), values(hr)),
		CorrRestingHRCycle: pearson(values(restingHR), cyclePhases(restingHR)),
	}
}

func values(readings []models.Reading) []float64 {
	out := make([]float64, 0, len(readings))
	for _, r := range readings {
		out = append(out, r.Value)
	}
	return out
}

// cyclePhases maps each reading's timestamp onto the sinusoidal phase of the
// nominal 28-day cycle, giving the "cycle" axis the correlations measure
// against.
func cyclePhases(readings []models.Reading) []float64 {
	out := make([]float64, 0, len(readings))
	for _, r := range readings {
		day := models.CycleDay(r.Timestamp)
		out = append(out, math.Sin(2*math.Pi*float64(day)/28))
	}
	return out
}

// pearson computes the Pearson correlation coefficient over index-paired
// samples, truncated to the shorter series. Returns 0 when undefined.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
