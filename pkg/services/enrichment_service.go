// Package services implements the enrichment, recommendation and insight
// pipelines on top of the repositories and the oracle client.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/jsonutil"
	"github.com/cinesage/cinesage-engine/pkg/llm"
	"github.com/cinesage/cinesage-engine/pkg/models"
	"github.com/cinesage/cinesage-engine/pkg/repositories"
	"github.com/cinesage/cinesage-engine/pkg/scoring"
)

// Neutral defaults applied when the oracle completion is malformed or a key
// is missing. Malformed oracle output never fails an item.
const (
	defaultAwardPotential  = models.AwardPotentialMedium
	defaultPopularityIndex = 50
	defaultEmotionalGenres = "emotional"
)

// EnrichmentService runs the batch enrichment pipeline.
type EnrichmentService interface {
	// Run enriches up to movieCount movies and returns exactly the movies
	// that fully succeeded. Per-item failures are logged and skipped; Run
	// only fails when the catalog itself cannot be read or ctx ends.
	Run(ctx context.Context, movieCount int) ([]*models.Movie, error)
}

type enrichmentService struct {
	movieRepo      repositories.MovieRepository
	ratingRepo     repositories.RatingRepository
	enrichmentRepo repositories.EnrichmentRepository
	oracle         llm.Client
	itemDelay      time.Duration
	maxTokens      int
	logger         *zap.Logger
}

// NewEnrichmentService creates a new enrichment service. itemDelay is the
// fixed pause between consecutive movies, the engine's only rate limit
// toward the oracle.
func NewEnrichmentService(
	movieRepo repositories.MovieRepository,
	ratingRepo repositories.RatingRepository,
	enrichmentRepo repositories.EnrichmentRepository,
	oracle llm.Client,
	itemDelay time.Duration,
	maxTokens int,
	logger *zap.Logger,
) EnrichmentService {
	return &enrichmentService{
		movieRepo:      movieRepo,
		ratingRepo:     ratingRepo,
		enrichmentRepo: enrichmentRepo,
		oracle:         oracle,
		itemDelay:      itemDelay,
		maxTokens:      maxTokens,
		logger:         logger.Named("enrichment"),
	}
}

var _ EnrichmentService = (*enrichmentService)(nil)

func (s *enrichmentService) Run(ctx context.Context, movieCount int) ([]*models.Movie, error) {
	runID := uuid.New()
	start := time.Now()

	catalog, err := s.movieRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	selected, statsByMovie, err := s.selectMovies(ctx, catalog, movieCount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrichment run started",
		zap.String("run_id", runID.String()),
		zap.Int("requested", movieCount),
		zap.Int("selected", len(selected)))

	var enriched []*models.Movie
	for i, movie := range selected {
		if err := ctx.Err(); err != nil {
			return enriched, fmt.Errorf("enrichment run interrupted: %w", err)
		}

		if err := s.enrichMovie(ctx, movie, statsByMovie[movie.ID], catalog); err != nil {
			s.logger.Warn("skipping movie after enrichment failure",
				zap.String("run_id", runID.String()),
				zap.Int64("movie_id", movie.ID),
				zap.String("title", movie.Title),
				zap.Error(err))
			continue
		}
		enriched = append(enriched, movie)

		// Fixed pacing toward the oracle, after every successful item
		// except the last.
		if i < len(selected)-1 {
			if err := sleepCtx(ctx, s.itemDelay); err != nil {
				return enriched, fmt.Errorf("enrichment run interrupted: %w", err)
			}
		}
	}

	s.logger.Info("enrichment run finished",
		zap.String("run_id", runID.String()),
		zap.Int("selected", len(selected)),
		zap.Int("enriched", len(enriched)),
		zap.Duration("elapsed", time.Since(start)))

	return enriched, nil
}

// selectMovies scans the catalog in storage order and admits movies that
// have at least one rating, stopping at movieCount. This is a linear scan
// with early exit, not a ranked selection.
func (s *enrichmentService) selectMovies(ctx context.Context, catalog []*models.Movie, movieCount int) ([]*models.Movie, map[int64]*models.RatingStats, error) {
	var selected []*models.Movie
	statsByMovie := make(map[int64]*models.RatingStats)

	for _, movie := range catalog {
		if len(selected) >= movieCount {
			break
		}
		stats, err := s.ratingRepo.StatsByMovie(ctx, movie.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("rating stats for movie %d: %w", movie.ID, err)
		}
		if stats.Count == 0 {
			continue
		}
		selected = append(selected, movie)
		statsByMovie[movie.ID] = stats
	}

	return selected, statsByMovie, nil
}

func (s *enrichmentService) enrichMovie(ctx context.Context, movie *models.Movie, stats *models.RatingStats, catalog []*models.Movie) error {
	roi := scoring.RollingROI(movie, catalog)

	attrs, err := s.inferAttributes(ctx, movie, stats, roi)
	if err != nil {
		return fmt.Errorf("infer attributes: %w", err)
	}

	enrichment := &models.Enrichment{
		MovieID:                movie.ID,
		AwardPotential:         attrs.awardPotential,
		PopularityQualityIndex: attrs.popularityIndex,
		EmotionalGenres:        attrs.emotionalGenres,
		RollingROI:             roi,
		EffectivenessScore:     scoring.ProductionEffectiveness(movie, stats.Average),
	}

	if err := s.enrichmentRepo.Upsert(ctx, enrichment); err != nil {
		return fmt.Errorf("persist enrichment: %w", err)
	}
	return nil
}

// inferredAttributes are the three oracle-judged enrichment fields.
type inferredAttributes struct {
	awardPotential  string
	popularityIndex int
	emotionalGenres string
}

// enrichmentCompletion is the JSON shape requested from the oracle. Fields
// are raw so loosely-typed values (quoted numbers, arrays of tags) can still
// be salvaged.
type enrichmentCompletion struct {
	AwardPotential         json.RawMessage `json:"awardPotential"`
	PopularityQualityIndex json.RawMessage `json:"popularityQualityIndex"`
	EmotionalGenres        json.RawMessage `json:"emotionalGenres"`
}

// inferAttributes asks the oracle for the judged fields. Only a transport
// failure is an error; an unparseable or incomplete completion degrades to
// the neutral defaults.
func (s *enrichmentService) inferAttributes(ctx context.Context, movie *models.Movie, stats *models.RatingStats, roi *float64) (inferredAttributes, error) {
	attrs := inferredAttributes{
		awardPotential:  defaultAwardPotential,
		popularityIndex: defaultPopularityIndex,
		emotionalGenres: defaultEmotionalGenres,
	}

	completion, err := s.oracle.Complete(ctx,
		s.buildEnrichmentPrompt(movie, stats, roi),
		enrichmentSystemMessage,
		llm.CompleteOptions{Temperature: 0.3, MaxTokens: s.maxTokens, JSONMode: true})
	if err != nil {
		return attrs, fmt.Errorf("oracle completion: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[enrichmentCompletion](completion)
	if err != nil {
		s.logger.Warn("unparseable enrichment completion, using defaults",
			zap.Int64("movie_id", movie.ID),
			zap.Error(err))
		return attrs, nil
	}

	if v := strings.TrimSpace(jsonutil.FlexibleString(parsed.AwardPotential)); v != "" {
		if canonical, ok := canonicalAwardPotential(v); ok {
			attrs.awardPotential = canonical
		} else {
			s.logger.Warn("off-category award potential, using default",
				zap.Int64("movie_id", movie.ID),
				zap.String("award_potential", v))
		}
	}
	if v, ok := jsonutil.FlexibleInt(parsed.PopularityQualityIndex); ok {
		attrs.popularityIndex = clampInt(v, 0, 100)
	}
	if genres := jsonutil.FlexibleStringSlice(parsed.EmotionalGenres); len(genres) > 0 {
		attrs.emotionalGenres = strings.Join(genres, ", ")
	}

	return attrs, nil
}

// canonicalAwardPotential maps a completion value onto the three award
// potential categories, ignoring case. Anything outside them is rejected so
// the neutral default applies.
func canonicalAwardPotential(v string) (string, bool) {
	for _, category := range []string{models.AwardPotentialHigh, models.AwardPotentialMedium, models.AwardPotentialLow} {
		if strings.EqualFold(v, category) {
			return category, true
		}
	}
	return "", false
}

const enrichmentSystemMessage = `You are a film industry analyst. Given a movie's catalog facts, audience rating statistics and production-company financial history, you judge its award potential, its combined popularity/quality standing, and the emotional character of its genres. Respond with a single JSON object.`

func (s *enrichmentService) buildEnrichmentPrompt(movie *models.Movie, stats *models.RatingStats, roi *float64) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following movie.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", movie.Title)
	if movie.Overview != "" {
		fmt.Fprintf(&sb, "Overview: %s\n", movie.Overview)
	}
	if movie.Genres != "" {
		fmt.Fprintf(&sb, "Genres: %s\n", movie.Genres)
	}
	fmt.Fprintf(&sb, "Release date: %s\n", movie.ReleaseDate)
	fmt.Fprintf(&sb, "Budget: %d\n", movie.Budget)
	fmt.Fprintf(&sb, "Revenue: %d\n", movie.Revenue)
	fmt.Fprintf(&sb, "Runtime: %d minutes\n", movie.Runtime)
	fmt.Fprintf(&sb, "Average rating: %.2f out of 5 (%d ratings)\n", stats.Average, stats.Count)
	if roi != nil {
		fmt.Fprintf(&sb, "Production company rolling ROI: %.2f%%\n", *roi)
	} else {
		sb.WriteString("Production company rolling ROI: no prior financial history\n")
	}

	sb.WriteString(`
Return a JSON object with exactly these keys:
- "awardPotential": "High", "Medium" or "Low"
- "popularityQualityIndex": an integer from 0 to 100
- "emotionalGenres": a short list of emotional genre tags, e.g. ["melancholic", "uplifting"]`)

	return sb.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sleepCtx pauses for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
