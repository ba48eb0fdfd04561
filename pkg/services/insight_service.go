package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/llm"
	"github.com/cinesage/cinesage-engine/pkg/models"
	"github.com/cinesage/cinesage-engine/pkg/repositories"
)

// queryContextLimit bounds the enriched catalog slice shown to the oracle
// for free-form questions.
const queryContextLimit = 100

// InsightService answers free-text questions about the enriched catalog and
// compares specific movies.
type InsightService interface {
	// Query forwards a free-text question with catalog context. The answer
	// is returned as parsed JSON when the oracle produced any, otherwise
	// wrapped as {"answer": <text>}.
	Query(ctx context.Context, userID *int64, question string) (json.RawMessage, error)

	// Compare contrasts the requested movies (at least two). Every id must
	// have both catalog and enrichment rows, and the oracle's answer must be
	// structured JSON; anything else is a hard failure.
	Compare(ctx context.Context, movieIDs []int64, userID *int64) (json.RawMessage, error)
}

type insightService struct {
	movieRepo      repositories.MovieRepository
	enrichmentRepo repositories.EnrichmentRepository
	preferences    PreferenceDeriver
	oracle         llm.Client
	temperature    float64
	maxTokens      int
	logger         *zap.Logger
}

// NewInsightService creates a new insight service.
func NewInsightService(
	movieRepo repositories.MovieRepository,
	enrichmentRepo repositories.EnrichmentRepository,
	preferences PreferenceDeriver,
	oracle llm.Client,
	temperature float64,
	maxTokens int,
	logger *zap.Logger,
) InsightService {
	return &insightService{
		movieRepo:      movieRepo,
		enrichmentRepo: enrichmentRepo,
		preferences:    preferences,
		oracle:         oracle,
		temperature:    temperature,
		maxTokens:      maxTokens,
		logger:         logger.Named("insight"),
	}
}

var _ InsightService = (*insightService)(nil)

func (s *insightService) Query(ctx context.Context, userID *int64, question string) (json.RawMessage, error) {
	enriched, err := s.enrichmentRepo.ListEnrichedMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enriched movies: %w", err)
	}
	if len(enriched) > queryContextLimit {
		enriched = enriched[:queryContextLimit]
	}

	var sb strings.Builder
	sb.WriteString("Enriched movie catalog:\n")
	writeMovieContext(&sb, enriched)
	s.writePreferenceBlock(ctx, &sb, userID)
	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)

	completion, err := s.oracle.Complete(ctx, sb.String(), querySystemMessage,
		llm.CompleteOptions{Temperature: s.temperature, MaxTokens: s.maxTokens})
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}

	// Relay structured answers verbatim; everything else becomes a
	// plain-text payload.
	if jsonStr, err := llm.ExtractJSON(completion); err == nil {
		return json.RawMessage(jsonStr), nil
	}
	payload, err := json.Marshal(map[string]string{"answer": strings.TrimSpace(completion)})
	if err != nil {
		return nil, fmt.Errorf("wrap plain-text answer: %w", err)
	}
	return payload, nil
}

func (s *insightService) Compare(ctx context.Context, movieIDs []int64, userID *int64) (json.RawMessage, error) {
	if len(movieIDs) < 2 {
		return nil, fmt.Errorf("comparison requires at least 2 movies, got %d", len(movieIDs))
	}

	subjects := make([]*models.EnrichedMovie, 0, len(movieIDs))
	for _, id := range movieIDs {
		movie, err := s.movieRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", id, err)
		}
		enrichment, err := s.enrichmentRepo.GetByMovie(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("enrichment for movie %d: %w", id, err)
		}
		subjects = append(subjects, &models.EnrichedMovie{Movie: *movie, Enrichment: enrichment})
	}

	var sb strings.Builder
	sb.WriteString("Movies to compare:\n")
	writeMovieContext(&sb, subjects)
	s.writePreferenceBlock(ctx, &sb, userID)
	sb.WriteString(`
Compare these movies against each other: strengths, weaknesses, audience
standing and financial effectiveness. Return a JSON object with a
"comparison" key holding one entry per movie and a "verdict" key with an
overall conclusion.`)

	completion, err := s.oracle.Complete(ctx, sb.String(), compareSystemMessage,
		llm.CompleteOptions{Temperature: s.temperature, MaxTokens: s.maxTokens, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}

	jsonStr, err := llm.ExtractJSON(completion)
	if err != nil {
		return nil, fmt.Errorf("parse comparison completion: %w: %v", apperrors.ErrOracleResponse, err)
	}
	return json.RawMessage(jsonStr), nil
}

// writePreferenceBlock appends the user's derived preferences when a user is
// given and derivation succeeds. Failures degrade to an unpersonalized
// prompt; they are never surfaced.
func (s *insightService) writePreferenceBlock(ctx context.Context, sb *strings.Builder, userID *int64) {
	if userID == nil {
		return
	}
	prefs, err := s.preferences.GetPreferences(ctx, *userID)
	if err != nil {
		s.logger.Warn("proceeding without personalization",
			zap.Int64("user_id", *userID),
			zap.Error(err))
		return
	}
	sb.WriteString("\nUser preferences:\n")
	fmt.Fprintf(sb, "- Favorite genres: %s\n", strings.Join(prefs.FavoriteGenres, ", "))
	fmt.Fprintf(sb, "- Preferred emotional tones: %s\n", strings.Join(prefs.EmotionalTones, ", "))
	fmt.Fprintf(sb, "- Budget preference: %s\n", prefs.BudgetPreference)
	if prefs.Summary != "" {
		fmt.Fprintf(sb, "- Taste summary: %s\n", prefs.Summary)
	}
}

func writeMovieContext(sb *strings.Builder, movies []*models.EnrichedMovie) {
	for _, m := range movies {
		fmt.Fprintf(sb, "- id=%d %q (%s; genres: %s; budget: %d; revenue: %d",
			m.ID, m.Title, m.ReleaseDate, m.Genres, m.Budget, m.Revenue)
		if e := m.Enrichment; e != nil {
			fmt.Fprintf(sb, "; award potential: %s; popularity/quality: %d; emotional: %s; effectiveness: %.2f",
				e.AwardPotential, e.PopularityQualityIndex, e.EmotionalGenres, e.EffectivenessScore)
			if e.RollingROI != nil {
				fmt.Fprintf(sb, "; rolling ROI: %.2f%%", *e.RollingROI)
			}
		}
		sb.WriteString(")\n")
	}
}

const querySystemMessage = `You are a film catalog assistant. Answer the user's question using only the enriched catalog facts provided. Prefer returning structured JSON when the question calls for data; otherwise answer in plain text.`

const compareSystemMessage = `You are a film comparison analyst. Contrast the given movies using their catalog facts and enrichment. Respond with a single JSON object.`
