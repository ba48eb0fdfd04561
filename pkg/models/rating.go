package models

// Rating is a user's score for a movie at a point in time. Ratings are
// immutable once recorded.
type Rating struct {
	UserID    int64   `json:"userId"`
	MovieID   int64   `json:"movieId"`
	Score     float64 `json:"rating"` // 0-5
	Timestamp int64   `json:"timestamp"`
}

// RatingStats aggregates a movie's full rating history.
type RatingStats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
