package models

import "time"

// Award potential categories assigned by the oracle.
const (
	AwardPotentialHigh   = "High"
	AwardPotentialMedium = "Medium"
	AwardPotentialLow    = "Low"
)

// Enrichment holds the derived and oracle-inferred attributes for one movie.
// There is at most one row per movie; re-enriching replaces the prior row.
type Enrichment struct {
	MovieID                int64     `json:"movieId"`
	AwardPotential         string    `json:"awardPotential"`         // High|Medium|Low
	PopularityQualityIndex int       `json:"popularityQualityIndex"` // 0-100
	EmotionalGenres        string    `json:"emotionalGenres"`        // comma-joined, oracle-generated
	RollingROI             *float64  `json:"rollingRoi"`             // percentage; nil means no prior financial history
	EffectivenessScore     float64   `json:"effectivenessScore"`     // 0-100, two decimals
	UpdatedAt              time.Time `json:"updatedAt"`
}

// EnrichedMovie is a catalog row joined with its enrichment, when present.
type EnrichedMovie struct {
	Movie
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}
