package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/jsonutil"
	"github.com/cinesage/cinesage-engine/pkg/llm"
	"github.com/cinesage/cinesage-engine/pkg/models"
	"github.com/cinesage/cinesage-engine/pkg/repositories"
)

const (
	// preferenceSampleSize is how many recent ratings are shown to the
	// oracle. The average is still computed over the entire history.
	preferenceSampleSize = 20

	// candidateLimit bounds the prompt: candidates past this position are
	// excluded regardless of quality.
	candidateLimit = 50
)

// PreferenceDeriver derives a user taste profile. Split out so the insight
// pipeline can depend on preference derivation alone.
type PreferenceDeriver interface {
	// GetPreferences recomputes the user's profile from their full rating
	// history. Returns apperrors.ErrNotFound when the user has no ratings
	// and apperrors.ErrOracleResponse when the oracle completion cannot be
	// parsed; unlike enrichment, a malformed completion here is fatal.
	GetPreferences(ctx context.Context, userID int64) (*models.UserPreferences, error)
}

// RecommendationService derives preferences and produces personalized picks.
type RecommendationService interface {
	PreferenceDeriver

	// Recommend returns up to count picks among enriched movies the user
	// has not rated. The result may be shorter than count: the oracle may
	// select fewer, and picks referencing unknown ids are dropped.
	Recommend(ctx context.Context, userID int64, count int) ([]*models.Recommendation, error)
}

type recommendationService struct {
	movieRepo      repositories.MovieRepository
	ratingRepo     repositories.RatingRepository
	enrichmentRepo repositories.EnrichmentRepository
	oracle         llm.Client
	temperature    float64
	maxTokens      int
	logger         *zap.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	movieRepo repositories.MovieRepository,
	ratingRepo repositories.RatingRepository,
	enrichmentRepo repositories.EnrichmentRepository,
	oracle llm.Client,
	temperature float64,
	maxTokens int,
	logger *zap.Logger,
) RecommendationService {
	return &recommendationService{
		movieRepo:      movieRepo,
		ratingRepo:     ratingRepo,
		enrichmentRepo: enrichmentRepo,
		oracle:         oracle,
		temperature:    temperature,
		maxTokens:      maxTokens,
		logger:         logger.Named("recommendation"),
	}
}

var _ RecommendationService = (*recommendationService)(nil)

// preferencesCompletion is the JSON shape requested from the oracle for
// preference derivation.
type preferencesCompletion struct {
	FavoriteGenres   json.RawMessage `json:"favoriteGenres"`
	EmotionalTones   json.RawMessage `json:"emotionalTones"`
	BudgetPreference json.RawMessage `json:"budgetPreference"`
	Summary          json.RawMessage `json:"summary"`
}

func (s *recommendationService) GetPreferences(ctx context.Context, userID int64) (*models.UserPreferences, error) {
	ratings, err := s.ratingRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for user %d: %w", userID, err)
	}
	if len(ratings) == 0 {
		return nil, fmt.Errorf("user %d has no ratings: %w", userID, apperrors.ErrNotFound)
	}

	// True average over the entire rating history, not just the sample.
	var sum float64
	for _, r := range ratings {
		sum += r.Score
	}
	average := sum / float64(len(ratings))

	sample := ratings
	if len(sample) > preferenceSampleSize {
		sample = sample[:preferenceSampleSize]
	}

	sampleIDs := make([]int64, 0, len(sample))
	for _, r := range sample {
		sampleIDs = append(sampleIDs, r.MovieID)
	}
	movies, err := s.movieRepo.GetByIDs(ctx, sampleIDs)
	if err != nil {
		return nil, fmt.Errorf("load sample movies for user %d: %w", userID, err)
	}
	movieByID := make(map[int64]*models.Movie, len(movies))
	for _, m := range movies {
		movieByID[m.ID] = m
	}

	prompt := s.buildPreferencesPrompt(sample, movieByID, average, len(ratings))
	completion, err := s.oracle.Complete(ctx, prompt, preferencesSystemMessage,
		llm.CompleteOptions{Temperature: s.temperature, MaxTokens: s.maxTokens, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("oracle completion for user %d: %w", userID, err)
	}

	parsed, err := llm.ParseJSONResponse[preferencesCompletion](completion)
	if err != nil {
		return nil, fmt.Errorf("parse preferences completion: %w: %v", apperrors.ErrOracleResponse, err)
	}

	return &models.UserPreferences{
		UserID:           userID,
		FavoriteGenres:   jsonutil.FlexibleStringSlice(parsed.FavoriteGenres),
		AverageRating:    average,
		EmotionalTones:   jsonutil.FlexibleStringSlice(parsed.EmotionalTones),
		BudgetPreference: strings.TrimSpace(jsonutil.FlexibleString(parsed.BudgetPreference)),
		Summary:          strings.TrimSpace(jsonutil.FlexibleString(parsed.Summary)),
	}, nil
}

// recommendationPick is one entry of the oracle's selection.
type recommendationPick struct {
	MovieID   int64           `json:"movieId"`
	Score     float64         `json:"score"`
	Reasoning json.RawMessage `json:"reasoning"`
}

// recommendationCompletion wraps the picks so strict JSON-object output mode
// can be used.
type recommendationCompletion struct {
	Recommendations []recommendationPick `json:"recommendations"`
}

func (s *recommendationService) Recommend(ctx context.Context, userID int64, count int) ([]*models.Recommendation, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrichmentRepo.ListEnrichedMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enriched movies: %w", err)
	}

	ratedIDs, err := s.ratingRepo.MovieIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load rated movie ids for user %d: %w", userID, err)
	}
	rated := make(map[int64]struct{}, len(ratedIDs))
	for _, id := range ratedIDs {
		rated[id] = struct{}{}
	}

	var candidates []*models.EnrichedMovie
	for _, movie := range enriched {
		if _, seen := rated[movie.ID]; seen {
			continue
		}
		candidates = append(candidates, movie)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no unrated enriched movies for user %d: %w", userID, apperrors.ErrEmptyResult)
	}
	if len(candidates) > candidateLimit {
		candidates = candidates[:candidateLimit]
	}

	prompt := s.buildRecommendationPrompt(prefs, candidates, count)
	completion, err := s.oracle.Complete(ctx, prompt, recommendationSystemMessage,
		llm.CompleteOptions{Temperature: s.temperature, MaxTokens: s.maxTokens, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("oracle completion for user %d: %w", userID, err)
	}

	parsed, err := llm.ParseJSONResponse[recommendationCompletion](completion)
	if err != nil {
		return nil, fmt.Errorf("parse recommendation completion: %w: %v", apperrors.ErrOracleResponse, err)
	}

	candidateByID := make(map[int64]*models.EnrichedMovie, len(candidates))
	for _, c := range candidates {
		candidateByID[c.ID] = c
	}

	// Reconcile the oracle's ids against the candidate set. Unknown or
	// excluded ids are dropped, never padded with placeholders.
	var recommendations []*models.Recommendation
	for _, pick := range parsed.Recommendations {
		candidate, ok := candidateByID[pick.MovieID]
		if !ok {
			s.logger.Debug("dropping pick for unknown candidate",
				zap.Int64("user_id", userID),
				zap.Int64("movie_id", pick.MovieID))
			continue
		}
		recommendations = append(recommendations, &models.Recommendation{
			Movie:     *candidate,
			Score:     pick.Score,
			Reasoning: jsonutil.FlexibleString(pick.Reasoning),
		})
	}

	return recommendations, nil
}

const preferencesSystemMessage = `You are a film taste analyst. From a user's recent ratings and overall statistics you infer their preferences. Respond with a single JSON object.`

func (s *recommendationService) buildPreferencesPrompt(sample []*models.Rating, movieByID map[int64]*models.Movie, average float64, total int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "A user has rated %d movies with an overall average of %.2f out of 5. Their most recent ratings:\n\n", total, average)
	for _, r := range sample {
		movie, ok := movieByID[r.MovieID]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- %s (genres: %s): rated %.1f\n", movie.Title, movie.Genres, r.Score)
	}

	sb.WriteString(`
Return a JSON object with exactly these keys:
- "favoriteGenres": ordered list of the user's favorite genres
- "emotionalTones": list of emotional tones the user prefers
- "budgetPreference": "blockbuster", "mid-budget" or "indie"
- "summary": one or two sentences describing the user's taste`)

	return sb.String()
}

const recommendationSystemMessage = `You are a film recommendation engine. Select the movies that best match the user's taste from the candidate list, using the enrichment facts provided. Respond with a single JSON object.`

func (s *recommendationService) buildRecommendationPrompt(prefs *models.UserPreferences, candidates []*models.EnrichedMovie, count int) string {
	var sb strings.Builder

	sb.WriteString("User profile:\n")
	fmt.Fprintf(&sb, "- Favorite genres: %s\n", strings.Join(prefs.FavoriteGenres, ", "))
	fmt.Fprintf(&sb, "- Preferred emotional tones: %s\n", strings.Join(prefs.EmotionalTones, ", "))
	fmt.Fprintf(&sb, "- Budget preference: %s\n", prefs.BudgetPreference)
	fmt.Fprintf(&sb, "- Average rating given: %.2f\n", prefs.AverageRating)
	if prefs.Summary != "" {
		fmt.Fprintf(&sb, "- Taste summary: %s\n", prefs.Summary)
	}

	sb.WriteString("\nCandidate movies:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%d %q (genres: %s", c.ID, c.Title, c.Genres)
		if e := c.Enrichment; e != nil {
			fmt.Fprintf(&sb, "; emotional: %s; award potential: %s; popularity/quality: %d; effectiveness: %.2f",
				e.EmotionalGenres, e.AwardPotential, e.PopularityQualityIndex, e.EffectivenessScore)
			if e.RollingROI != nil {
				fmt.Fprintf(&sb, "; rolling ROI: %.2f%%", *e.RollingROI)
			}
		}
		sb.WriteString(")\n")
	}

	fmt.Fprintf(&sb, `
Select up to %d movies for this user. Return a JSON object with a single key
"recommendations": an array of objects with keys "movieId" (one of the
candidate ids above), "score" (0-10 fit) and "reasoning" (one sentence).`, count)

	return sb.String()
}
