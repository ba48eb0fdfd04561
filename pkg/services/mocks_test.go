package services

import (
	"context"
	"sort"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

// ============================================================================
// Mock repositories shared by the service tests
// ============================================================================

type mockMovieRepo struct {
	movies  []*models.Movie
	listErr error
}

func (m *mockMovieRepo) List(ctx context.Context) ([]*models.Movie, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.movies, nil
}

func (m *mockMovieRepo) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	for _, movie := range m.movies {
		if movie.ID == id {
			return movie, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockMovieRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Movie, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var result []*models.Movie
	for _, movie := range m.movies {
		if _, ok := wanted[movie.ID]; ok {
			result = append(result, movie)
		}
	}
	return result, nil
}

type mockRatingRepo struct {
	ratings  []*models.Rating
	statsErr error
}

func (m *mockRatingRepo) GetByUser(ctx context.Context, userID int64) ([]*models.Rating, error) {
	var result []*models.Rating
	for _, r := range m.ratings {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})
	return result, nil
}

func (m *mockRatingRepo) MovieIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, r := range m.ratings {
		if r.UserID != userID {
			continue
		}
		if _, ok := seen[r.MovieID]; ok {
			continue
		}
		seen[r.MovieID] = struct{}{}
		ids = append(ids, r.MovieID)
	}
	return ids, nil
}

func (m *mockRatingRepo) StatsByMovie(ctx context.Context, movieID int64) (*models.RatingStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	stats := &models.RatingStats{}
	var sum float64
	for _, r := range m.ratings {
		if r.MovieID == movieID {
			sum += r.Score
			stats.Count++
		}
	}
	if stats.Count > 0 {
		stats.Average = sum / float64(stats.Count)
	}
	return stats, nil
}

func (m *mockRatingRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, r := range m.ratings {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// mockEnrichmentRepo keeps one row per movie id, mirroring the upsert
// semantics of the real table. catalog supplies the join order for
// ListEnrichedMovies.
type mockEnrichmentRepo struct {
	catalog   []*models.Movie
	rows      map[int64]*models.Enrichment
	upserts   int
	upsertErr error
	listErr   error
}

func newMockEnrichmentRepo(catalog []*models.Movie) *mockEnrichmentRepo {
	return &mockEnrichmentRepo{
		catalog: catalog,
		rows:    make(map[int64]*models.Enrichment),
	}
}

func (m *mockEnrichmentRepo) Upsert(ctx context.Context, enrichment *models.Enrichment) error {
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	copied := *enrichment
	m.rows[enrichment.MovieID] = &copied
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
	for _, movie := range m.catalog {
		if row, ok := m.rows[movie.ID]; ok {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *mockEnrichmentRepo) ListEnrichedMovies(ctx context.Context) ([]*models.EnrichedMovie, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*models.EnrichedMovie
	for _, movie := range m.catalog {
		if row, ok := m.rows[movie.ID]; ok {
			result = append(result, &models.EnrichedMovie{Movie: *movie, Enrichment: row})
		}
	}
	return result, nil
}

type mockPreferenceDeriver struct {
	prefs *models.UserPreferences
	err   error
	calls int
}

func (m *mockPreferenceDeriver) GetPreferences(ctx context.Context, userID int64) (*models.UserPreferences, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.prefs, nil
}
