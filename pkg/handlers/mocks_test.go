package handlers

import (
	"context"
	"encoding/json"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

// ============================================================================
// Service and repository mocks shared by the handler tests
// ============================================================================

type mockEnrichmentService struct {
	runFunc func(ctx context.Context, movieCount int) ([]*models.Movie, error)
	calls   int
}

func (m *mockEnrichmentService) Run(ctx context.Context, movieCount int) ([]*models.Movie, error) {
	m.calls++
	return m.runFunc(ctx, movieCount)
}

type mockRecommendationService struct {
	prefsFunc     func(ctx context.Context, userID int64) (*models.UserPreferences, error)
	recommendFunc func(ctx context.Context, userID int64, count int) ([]*models.Recommendation, error)
}

func (m *mockRecommendationService) GetPreferences(ctx context.Context, userID int64) (*models.UserPreferences, error) {
	return m.prefsFunc(ctx, userID)
}

func (m *mockRecommendationService) Recommend(ctx context.Context, userID int64, count int) ([]*models.Recommendation, error) {
	return m.recommendFunc(ctx, userID, count)
}

type mockInsightService struct {
	queryFunc   func(ctx context.Context, userID *int64, question string) (json.RawMessage, error)
	compareFunc func(ctx context.Context, movieIDs []int64, userID *int64) (json.RawMessage, error)
}

func (m *mockInsightService) Query(ctx context.Context, userID *int64, question string) (json.RawMessage, error) {
	return m.queryFunc(ctx, userID, question)
}

func (m *mockInsightService) Compare(ctx context.Context, movieIDs []int64, userID *int64) (json.RawMessage, error) {
	return m.compareFunc(ctx, movieIDs, userID)
}

type mockMovieRepo struct {
	movies map[int64]*models.Movie
}

func (m *mockMovieRepo) List(ctx context.Context) ([]*models.Movie, error) {
	var result []*models.Movie
	for _, movie := range m.movies {
		result = append(result, movie)
	}
	return result, nil
}

func (m *mockMovieRepo) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	movie, ok := m.movies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return movie, nil
}

func (m *mockMovieRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Movie, error) {
	var result []*models.Movie
	for _, id := range ids {
		if movie, ok := m.movies[id]; ok {
			result = append(result, movie)
		}
	}
	return result, nil
}

type mockEnrichmentRepo struct {
	enriched []*models.EnrichedMovie
	rows     map[int64]*models.Enrichment
	listErr  error
}

func (m *mockEnrichmentRepo) Upsert(ctx context.Context, enrichment *models.Enrichment) error {
	return nil
}

func (m *mockEnrichmentRepo) GetByMovie(ctx context.Context, movieID int64) (*models.Enrichment, error) {
	row, ok := m.rows[movieID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return row, nil
}

func (m *mockEnrichmentRepo) List(ctx context.Context) ([]*models.Enrichment, error) {
	var result []*models.Enrichment
	for _, e := range m.enriched {
		result = append(result, e.Enrichment)
	}
	return result, nil
}

func (m *mockEnrichmentRepo) ListEnrichedMovies(ctx context.Context) ([]*models.EnrichedMovie, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.enriched, nil
}

type mockRatingRepo struct {
	userIDs []int64
	listErr error
}

func (m *mockRatingRepo) GetByUser(ctx context.Context, userID int64) ([]*models.Rating, error) {
	return nil, nil
}

func (m *mockRatingRepo) MovieIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func (m *mockRatingRepo) StatsByMovie(ctx context.Context, movieID int64) (*models.RatingStats, error) {
	return &models.RatingStats{}, nil
}

func (m *mockRatingRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.userIDs, nil
}
