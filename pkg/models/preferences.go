package models

// UserPreferences is a derived profile of a user's taste. It is recomputed
// on every request and never persisted.
type UserPreferences struct {
	UserID           int64    `json:"userId"`
	FavoriteGenres   []string `json:"favoriteGenres"`
	AverageRating    float64  `json:"averageRating"`
	EmotionalTones   []string `json:"emotionalTones"`
	BudgetPreference string   `json:"budgetPreference"`
	Summary          string   `json:"summary"`
}
