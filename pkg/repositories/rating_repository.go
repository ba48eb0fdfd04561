package repositories

import (
	"context"
	"fmt"

	"github.com/cinesage/cinesage-engine/pkg/database"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

// RatingRepository provides read access to the user rating history.
type RatingRepository interface {
	// GetByUser returns all of a user's ratings, newest first.
	GetByUser(ctx context.Context, userID int64) ([]*models.Rating, error)

	// MovieIDsByUser returns the ids of every movie the user has rated.
	MovieIDsByUser(ctx context.Context, userID int64) ([]int64, error)

	// StatsByMovie aggregates a movie's full rating history. A movie with no
	// ratings yields a zero-count result, not an error.
	StatsByMovie(ctx context.Context, movieID int64) (*models.RatingStats, error)

	// ListUserIDs returns every distinct user id present in the rating store.
	ListUserIDs(ctx context.Context) ([]int64, error)
}

type ratingRepository struct {
	db *database.DB
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(db *database.DB) RatingRepository {
	return &ratingRepository{db: db}
}

var _ RatingRepository = (*ratingRepository)(nil)

func (r *ratingRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Rating, error) {
	query := `
		SELECT user_id, movie_id, rating, timestamp
		FROM ratings
		WHERE user_id = $1
		ORDER BY timestamp DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get ratings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.UserID, &rating.MovieID, &rating.Score, &rating.Timestamp); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

func (r *ratingRepository) MovieIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT DISTINCT movie_id FROM ratings WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get rated movie ids for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan movie id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie ids: %w", err)
	}
	return ids, nil
}

func (r *ratingRepository) StatsByMovie(ctx context.Context, movieID int64) (*models.RatingStats, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM ratings
		WHERE movie_id = $1`

	var stats models.RatingStats
	if err := r.db.QueryRow(ctx, query, movieID).Scan(&stats.Average, &stats.Count); err != nil {
		return nil, fmt.Errorf("rating stats for movie %d: %w", movieID, err)
	}
	return &stats, nil
}

func (r *ratingRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM ratings ORDER BY user_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}
