package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/models"
	"github.com/cinesage/cinesage-engine/pkg/testhelpers"
)

func insertMovie(t *testing.T, db *testhelpers.EngineDB, movie *models.Movie) {
	t.Helper()
	_, err := db.DB.Exec(context.Background(), `
		INSERT INTO movies (id, tmdb_id, title, overview, production_companies, release_date,
			budget, revenue, runtime, original_language, genres, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		movie.ID, movie.TmdbID, movie.Title, movie.Overview, movie.ProductionCompanies,
		movie.ReleaseDate, movie.Budget, movie.Revenue, movie.Runtime,
		movie.OriginalLanguage, movie.Genres, movie.Status)
	require.NoError(t, err)
}

func insertRating(t *testing.T, db *testhelpers.EngineDB, rating *models.Rating) {
	t.Helper()
	_, err := db.DB.Exec(context.Background(), `
		INSERT INTO ratings (user_id, movie_id, rating, timestamp)
		VALUES ($1, $2, $3, $4)`,
		rating.UserID, rating.MovieID, rating.Score, rating.Timestamp)
	require.NoError(t, err)
}

func catalogMovie(id int64, title string) *models.Movie {
	return &models.Movie{
		ID:                  id,
		TmdbID:              id + 1000,
		Title:               title,
		ProductionCompanies: `[{"name": "Integration Pictures"}]`,
		ReleaseDate:         "2020-06-01",
		Budget:              5_000_000,
		Revenue:             12_000_000,
		Runtime:             110,
		OriginalLanguage:    "en",
		Genres:              "Drama",
		Status:              "Released",
	}
}

func TestMovieRepository_Integration(t *testing.T) {
	db := testhelpers.GetEngineDB(t)
	db.TruncateAll(t)
	ctx := context.Background()

	repo := NewMovieRepository(db.DB)

	insertMovie(t, db, catalogMovie(2, "Second"))
	insertMovie(t, db, catalogMovie(1, "First"))
	insertMovie(t, db, catalogMovie(3, "Third"))

	t.Run("List is ordered by id", func(t *testing.T) {
		movies, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, movies, 3)
		assert.Equal(t, []string{"First", "Second", "Third"},
			[]string{movies[0].Title, movies[1].Title, movies[2].Title})
	})

	t.Run("GetByID", func(t *testing.T) {
		movie, err := repo.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Second", movie.Title)
		assert.Equal(t, int64(5_000_000), movie.Budget)
	})

	t.Run("GetByID unknown is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("GetByIDs skips unknown ids", func(t *testing.T) {
		movies, err := repo.GetByIDs(ctx, []int64{1, 3, 999})
		require.NoError(t, err)
		assert.Len(t, movies, 2)
	})
}

func TestRatingRepository_Integration(t *testing.T) {
	db := testhelpers.GetEngineDB(t)
	db.TruncateAll(t)
	ctx := context.Background()

	repo := NewRatingRepository(db.DB)

	insertRating(t, db, &models.Rating{UserID: 7, MovieID: 1, Score: 4.0, Timestamp: 100})
	insertRating(t, db, &models.Rating{UserID: 7, MovieID: 2, Score: 2.0, Timestamp: 300})
	insertRating(t, db, &models.Rating{UserID: 7, MovieID: 3, Score: 5.0, Timestamp: 200})
	insertRating(t, db, &models.Rating{UserID: 8, MovieID: 1, Score: 3.0, Timestamp: 150})

	t.Run("GetByUser newest first", func(t *testing.T) {
		ratings, err := repo.GetByUser(ctx, 7)
		require.NoError(t, err)
		require.Len(t, ratings, 3)
		assert.Equal(t, []int64{2, 3, 1},
			[]int64{ratings[0].MovieID, ratings[1].MovieID, ratings[2].MovieID})
	})

	t.Run("MovieIDsByUser", func(t *testing.T) {
		ids, err := repo.MovieIDsByUser(ctx, 7)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
	})

	t.Run("StatsByMovie aggregates all users", func(t *testing.T) {
		stats, err := repo.StatsByMovie(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Count)
		assert.InDelta(t, 3.5, stats.Average, 1e-9)
	})

	t.Run("StatsByMovie with no ratings is zero count", func(t *testing.T) {
		stats, err := repo.StatsByMovie(ctx, 999)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Count)
		assert.Equal(t, 0.0, stats.Average)
	})

	t.Run("ListUserIDs distinct and sorted", func(t *testing.T) {
		userIDs, err := repo.ListUserIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 8}, userIDs)
	})
}

func TestEnrichmentRepository_Integration(t *testing.T) {
	db := testhelpers.GetEngineDB(t)
	db.TruncateAll(t)
	ctx := context.Background()

	repo := NewEnrichmentRepository(db.DB)

	insertMovie(t, db, catalogMovie(1, "First"))
	insertMovie(t, db, catalogMovie(2, "Second"))

	roi := 140.5
	enrichment := &models.Enrichment{
		MovieID:                1,
		AwardPotential:         models.AwardPotentialHigh,
		PopularityQualityIndex: 82,
		EmotionalGenres:        "tense, uplifting",
		RollingROI:             &roi,
		EffectivenessScore:     77.25,
	}
	require.NoError(t, repo.Upsert(ctx, enrichment))

	t.Run("GetByMovie round-trips", func(t *testing.T) {
		got, err := repo.GetByMovie(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.AwardPotentialHigh, got.AwardPotential)
		assert.Equal(t, 82, got.PopularityQualityIndex)
		require.NotNil(t, got.RollingROI)
		assert.InDelta(t, 140.5, *got.RollingROI, 1e-9)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("GetByMovie unknown is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByMovie(ctx, 999)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Upsert overwrites and preserves single row", func(t *testing.T) {
		updated := &models.Enrichment{
			MovieID:                1,
			AwardPotential:         models.AwardPotentialLow,
			PopularityQualityIndex: 33,
			EmotionalGenres:        "bleak",
			RollingROI:             nil,
			EffectivenessScore:     21.0,
		}
		require.NoError(t, repo.Upsert(ctx, updated))

		got, err := repo.GetByMovie(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.AwardPotentialLow, got.AwardPotential)
		assert.Nil(t, got.RollingROI)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ListEnrichedMovies joins the catalog", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &models.Enrichment{
			MovieID:                2,
			AwardPotential:         models.AwardPotentialMedium,
			PopularityQualityIndex: 50,
			EmotionalGenres:        "emotional",
			EffectivenessScore:     40,
		}))

		enriched, err := repo.ListEnrichedMovies(ctx)
		require.NoError(t, err)
		require.Len(t, enriched, 2)
		assert.Equal(t, "First", enriched[0].Title)
		require.NotNil(t, enriched[0].Enrichment)
		assert.Equal(t, "Second", enriched[1].Title)
	})
}
