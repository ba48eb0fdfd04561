package scoring

import (
	"math"

	"github.com/cinesage/cinesage-engine/pkg/models"
)

// Component weights of the production effectiveness score.
const (
	ratingWeight  = 0.40
	roiWeight     = 0.35
	revenueWeight = 0.25
)

// ProductionEffectiveness combines audience rating, ROI and revenue scale
// into a single score, rounded to two decimals. The ROI component maps a
// -50% return to 0 and a +150% return to 100, saturating outside that band.
// The revenue component is log-scaled so that 10^9 maps to 100; revenue
// above 10^9 is not clamped and pushes the total past 100.
func ProductionEffectiveness(movie *models.Movie, avgRating float64) float64 {
	ratingScore := avgRating / 5.0 * 100

	var roiScore float64
	if movie.Budget > 0 && movie.Revenue > 0 {
		roiScore = clamp((roiPercent(movie.Budget, movie.Revenue)+50)/2, 0, 100)
	}

	var revenueScore float64
	if movie.Revenue > 0 {
		revenueScore = math.Log10(float64(movie.Revenue)) / 9 * 100
	}

	total := ratingScore*ratingWeight + roiScore*roiWeight + revenueScore*revenueWeight
	return math.Round(total*100) / 100
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
