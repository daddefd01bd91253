package scoring

import (
	"math"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Aggregate combines dimension sub-scores into a 0-100 total. Weights are
// re-normalized across the dimensions that were actually scored, so a
// listing missing one low-weight dimension is not penalized against a fully
// disclosed one. A single dimension scored 8 therefore totals 80 whatever
// its weight. When nothing was scored the total is nil: zero is a real,
// meaningfully bad score and must never stand in for "no data".
func Aggregate(breakdown map[string]models.DimensionScore, dims []DimensionConfig, flags []string) models.ScoreResult {
	result := models.ScoreResult{
		Breakdown: breakdown,
		Flags:     flags,
	}

	var weighted, weightSum float64
	for _, d := range dims {
		ds, ok := breakdown[d.Name]
		if !ok || !ds.Scored {
			result.MissingDimensions = append(result.MissingDimensions, d.Name)
			continue
		}
		weighted += ds.Value * d.Weight
		weightSum += d.Weight
	}

	if weightSum > 0 {
		total := round2(10 * weighted / weightSum)
		result.Total = &total
	}
	return result
}

// round2 rounds to two decimal places for reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
