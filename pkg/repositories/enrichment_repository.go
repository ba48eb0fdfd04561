package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/database"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

// EnrichmentRepository provides access to the per-movie enrichment facts.
type EnrichmentRepository interface {
	// Upsert inserts or replaces the enrichment row for a movie. The movie
	// id is the natural key; re-enriching overwrites the prior row.
	Upsert(ctx context.Context, enrichment *models.Enrichment) error

	GetByMovie(ctx context.Context, movieID int64) (*models.Enrichment, error)
	List(ctx context.Context) ([]*models.Enrichment, error)

	// ListEnrichedMovies returns every catalog movie that has an enrichment
	// row, joined with it.
	ListEnrichedMovies(ctx context.Context) ([]*models.EnrichedMovie, error)
}

type enrichmentRepository struct {
	db *database.DB
}

// NewEnrichmentRepository creates a new EnrichmentRepository.
func NewEnrichmentRepository(db *database.DB) EnrichmentRepository {
	return &enrichmentRepository{db: db}
}

var _ EnrichmentRepository = (*enrichmentRepository)(nil)

func (r *enrichmentRepository) Upsert(ctx context.Context, enrichment *models.Enrichment) error {
	query := `
		INSERT INTO movie_enrichments (
			movie_id, award_potential, popularity_quality_index,
			emotional_genres, rolling_roi, effectiveness_score, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (movie_id) DO UPDATE SET
			award_potential = EXCLUDED.award_potential,
			popularity_quality_index = EXCLUDED.popularity_quality_index,
			emotional_genres = EXCLUDED.emotional_genres,
			rolling_roi = EXCLUDED.rolling_roi,
			effectiveness_score = EXCLUDED.effectiveness_score,
			updated_at = EXCLUDED.updated_at`

	enrichment.UpdatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query,
		enrichment.MovieID,
		enrichment.AwardPotential,
		enrichment.PopularityQualityIndex,
		enrichment.EmotionalGenres,
		enrichment.RollingROI,
		enrichment.EffectivenessScore,
		enrichment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert enrichment for movie %d: %w", enrichment.MovieID, err)
	}
	return nil
}

const enrichmentColumns = `movie_id, award_potential, popularity_quality_index,
	emotional_genres, rolling_roi, effectiveness_score, updated_at`

func (r *enrichmentRepository) GetByMovie(ctx context.Context, movieID int64) (*models.Enrichment, error) {
	query := `SELECT ` + enrichmentColumns + ` FROM movie_enrichments WHERE movie_id = $1`

	var e models.Enrichment
	err := r.db.QueryRow(ctx, query, movieID).Scan(
		&e.MovieID, &e.AwardPotential, &e.PopularityQualityIndex,
		&e.EmotionalGenres, &e.RollingROI, &e.EffectivenessScore, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get enrichment for movie %d: %w", movieID, err)
	}
	return &e, nil
}

func (r *enrichmentRepository) List(ctx context.Context) ([]*models.Enrichment, error) {
	query := `SELECT ` + enrichmentColumns + ` FROM movie_enrichments ORDER BY movie_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enrichments: %w", err)
	}
	defer rows.Close()

	var enrichments []*models.Enrichment
	for rows.Next() {
		var e models.Enrichment
		if err := rows.Scan(
			&e.MovieID, &e.AwardPotential, &e.PopularityQualityIndex,
			&e.EmotionalGenres, &e.RollingROI, &e.EffectivenessScore, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrichment: %w", err)
		}
		enrichments = append(enrichments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichments: %w", err)
	}
	return enrichments, nil
}

func (r *enrichmentRepository) ListEnrichedMovies(ctx context.Context) ([]*models.EnrichedMovie, error) {
	query := `
		SELECT m.id, m.tmdb_id, m.title, m.overview, m.production_companies,
			m.release_date, m.budget, m.revenue, m.runtime,
			m.original_language, m.genres, m.status,
			e.movie_id, e.award_potential, e.popularity_quality_index,
			e.emotional_genres, e.rolling_roi, e.effectiveness_score, e.updated_at
		FROM movies m
		JOIN movie_enrichments e ON e.movie_id = m.id
		ORDER BY m.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enriched movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.EnrichedMovie
	for rows.Next() {
		var em models.EnrichedMovie
		var e models.Enrichment
		if err := rows.Scan(
			&em.ID, &em.TmdbID, &em.Title, &em.Overview, &em.ProductionCompanies,
			&em.ReleaseDate, &em.Budget, &em.Revenue, &em.Runtime,
			&em.OriginalLanguage, &em.Genres, &em.Status,
			&e.MovieID, &e.AwardPotential, &e.PopularityQualityIndex,
			&e.EmotionalGenres, &e.RollingROI, &e.EffectivenessScore, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enriched movie: %w", err)
		}
		em.Enrichment = &e
		movies = append(movies, &em)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enriched movies: %w", err)
	}
	return movies, nil
}
