package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/llm"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

const validPreferencesCompletion = `{
	"favoriteGenres": ["Drama", "Thriller"],
	"emotionalTones": ["tense", "melancholic"],
	"budgetPreference": "indie",
	"summary": "Prefers slow-burn character studies."
}`

func newRecommendationFixture(movies []*models.Movie, ratings []*models.Rating, oracle *llm.MockClient) (RecommendationService, *mockEnrichmentRepo) {
	enrichmentRepo := newMockEnrichmentRepo(movies)
	svc := NewRecommendationService(
		&mockMovieRepo{movies: movies},
		&mockRatingRepo{ratings: ratings},
		enrichmentRepo,
		oracle,
		0.7,
		1000,
		zap.NewNop(),
	)
	return svc, enrichmentRepo
}

func enrich(repo *mockEnrichmentRepo, movieIDs ...int64) {
	for _, id := range movieIDs {
		repo.rows[id] = &models.Enrichment{
			MovieID:                id,
			AwardPotential:         models.AwardPotentialMedium,
			PopularityQualityIndex: 60,
			EmotionalGenres:        "uplifting",
			EffectivenessScore:     55.5,
		}
	}
}

func TestGetPreferences_NoRatingsIsNotFound(t *testing.T) {
	svc, _ := newRecommendationFixture([]*models.Movie{testMovie(1, "A")}, nil, llm.NewMockClient())

	prefs, err := svc.GetPreferences(context.Background(), 42)
	assert.Nil(t, prefs)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetPreferences_AveragesFullHistorySamplesRecent(t *testing.T) {
	// 25 ratings: the prompt shows only the 20 most recent, but the average
	// covers all of them.
	var movies []*models.Movie
	var ratings []*models.Rating
	for i := int64(1); i <= 25; i++ {
		movies = append(movies, testMovie(i, fmt.Sprintf("Movie %d", i)))
		score := 2.0
		if i > 20 {
			// The five most recent ratings are the high ones.
			score = 5.0
		}
		ratings = append(ratings, rate(7, i, score, 1000+i))
	}

	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(context.Context, string, string, llm.CompleteOptions) (string, error) {
		return validPreferencesCompletion, nil
	}

	svc, _ := newRecommendationFixture(movies, ratings, oracle)
	prefs, err := svc.GetPreferences(context.Background(), 7)
	require.NoError(t, err)

	// (20*2 + 5*5) / 25 = 2.6
	assert.InDelta(t, 2.6, prefs.AverageRating, 1e-9)
	assert.Equal(t, []string{"Drama", "Thriller"}, prefs.FavoriteGenres)
	assert.Equal(t, []string{"tense", "melancholic"}, prefs.EmotionalTones)
	assert.Equal(t, "indie", prefs.BudgetPreference)
	assert.Equal(t, "Prefers slow-burn character studies.", prefs.Summary)

	require.Len(t, oracle.Prompts, 1)
	prompt := oracle.Prompts[0]
	assert.Contains(t, prompt, "rated 25 movies")
	// Most recent 20 are movies 6..25; movies 1..5 fall off the sample.
	assert.Contains(t, prompt, "Movie 25")
	assert.Contains(t, prompt, "Movie 6")
	assert.NotContains(t, prompt, "Movie 5 ")
}

func TestGetPreferences_MalformedCompletionIsFatal(t *testing.T) {
	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(context.Context, string, string, llm.CompleteOptions) (string, error) {
		return "I could not produce JSON, sorry.", nil
	}

	movies := []*models.Movie{testMovie(1, "A")}
	ratings := []*models.Rating{rate(7, 1, 4, 100)}
	svc, _ := newRecommendationFixture(movies, ratings, oracle)

	prefs, err := svc.GetPreferences(context.Background(), 7)
	assert.Nil(t, prefs)
	assert.ErrorIs(t, err, apperrors.ErrOracleResponse)
}

func TestRecommend_ExcludesRatedAndDropsUnknownPicks(t *testing.T) {
	movies := []*models.Movie{testMovie(1, "Seen"), testMovie(2, "Fresh"), testMovie(3, "Also Fresh")}
	ratings := []*models.Rating{rate(7, 1, 5, 100)}

	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(ctx context.Context, prompt, system string, opts llm.CompleteOptions) (string, error) {
		if strings.Contains(system, "taste analyst") {
			return validPreferencesCompletion, nil
		}
		// Movie 1 is rated, movie 999 does not exist; only 2 survives.
		return `{"recommendations": [
			{"movieId": 2, "score": 9.1, "reasoning": "Matches the tense tone."},
			{"movieId": 1, "score": 8.0, "reasoning": "Already seen."},
			{"movieId": 999, "score": 7.5, "reasoning": "Hallucinated."}
		]}`, nil
	}

	svc, repo := newRecommendationFixture(movies, ratings, oracle)
	enrich(repo, 1, 2, 3)

	recs, err := svc.Recommend(context.Background(), 7, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(2), recs[0].Movie.ID)
	assert.Equal(t, 9.1, recs[0].Score)
	assert.Equal(t, "Matches the tense tone.", recs[0].Reasoning)

	// The candidate list never offered the rated movie.
	recPrompt := oracle.Prompts[len(oracle.Prompts)-1]
	assert.Contains(t, recPrompt, "id=2 ")
	assert.NotContains(t, recPrompt, "id=1 ")
}

func TestRecommend_NoCandidatesIsEmptyResult(t *testing.T) {
	// The only enriched movie is the one the user already rated.
	movies := []*models.Movie{testMovie(1, "Seen")}
	ratings := []*models.Rating{rate(7, 1, 5, 100)}

	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(context.Context, string, string, llm.CompleteOptions) (string, error) {
		return validPreferencesCompletion, nil
	}

	svc, repo := newRecommendationFixture(movies, ratings, oracle)
	enrich(repo, 1)

	recs, err := svc.Recommend(context.Background(), 7, 5)
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, apperrors.ErrEmptyResult)
}

func TestRecommend_TruncatesCandidateList(t *testing.T) {
	var movies []*models.Movie
	for i := int64(1); i <= 60; i++ {
		movies = append(movies, testMovie(i, fmt.Sprintf("Movie %d", i)))
	}
	// Rating a movie outside the catalog keeps all 60 unrated.
	ratings := []*models.Rating{rate(7, 500, 4, 100)}
	movies = append(movies, testMovie(500, "Rated Elsewhere"))

	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(ctx context.Context, prompt, system string, opts llm.CompleteOptions) (string, error) {
		if strings.Contains(system, "taste analyst") {
			return validPreferencesCompletion, nil
		}
		return `{"recommendations": []}`, nil
	}

	svc, repo := newRecommendationFixture(movies, ratings, oracle)
	ids := make([]int64, 0, 60)
	for i := int64(1); i <= 60; i++ {
		ids = append(ids, i)
	}
	enrich(repo, ids...)

	recs, err := svc.Recommend(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recPrompt := oracle.Prompts[len(oracle.Prompts)-1]
	assert.Contains(t, recPrompt, "id=50 ")
	assert.NotContains(t, recPrompt, "id=51 ")
}

func TestRecommend_PreferenceFailurePropagates(t *testing.T) {
	oracleErr := errors.New("upstream timeout")
	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(context.Context, string, string, llm.CompleteOptions) (string, error) {
		return "", oracleErr
	}

	movies := []*models.Movie{testMovie(1, "A"), testMovie(2, "B")}
	ratings := []*models.Rating{rate(7, 1, 4, 100)}
	svc, repo := newRecommendationFixture(movies, ratings, oracle)
	enrich(repo, 2)

	recs, err := svc.Recommend(context.Background(), 7, 5)
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, oracleErr)
}

func TestRecommend_MalformedCompletionIsOracleError(t *testing.T) {
	oracle := llm.NewMockClient()
	oracle.CompleteFunc = func(ctx context.Context, prompt, system string, opts llm.CompleteOptions) (string, error) {
		if strings.Contains(system, "taste analyst") {
			return validPreferencesCompletion, nil
		}
		return "no structure here", nil
	}

	movies := []*models.Movie{testMovie(1, "A"), testMovie(2, "B")}
	ratings := []*models.Rating{rate(7, 1, 4, 100)}
	svc, repo := newRecommendationFixture(movies, ratings, oracle)
	enrich(repo, 2)

	recs, err := svc.Recommend(context.Background(), 7, 5)
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, apperrors.ErrOracleResponse)
}
