package models

// Recommendation is a transient pick produced for a single response.
type Recommendation struct {
	Movie     EnrichedMovie `json:"movie"`
	Score     float64       `json:"score"`
	Reasoning string        `json:"reasoning"`
}
