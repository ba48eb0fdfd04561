// Package repositories provides PostgreSQL data access for the movie
// catalog, the rating history and the enrichment facts. Repositories are
// explicitly constructed with an injected pool; no ambient state.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
	"github.com/cinesage/cinesage-engine/pkg/database"
	"github.com/cinesage/cinesage-engine/pkg/models"
)

// MovieRepository provides read access to the movie catalog. The catalog is
// populated at ingestion time and never written by the engine.
type MovieRepository interface {
	List(ctx context.Context) ([]*models.Movie, error)
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Movie, error)
}

type movieRepository struct {
	db *database.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *database.DB) MovieRepository {
	return &movieRepository{db: db}
}

var _ MovieRepository = (*movieRepository)(nil)

const movieColumns = `id, tmdb_id, title, overview, production_companies, release_date,
	budget, revenue, runtime, original_language, genres, status`

func (r *movieRepository) List(ctx context.Context) ([]*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return movie, nil
}

func (r *movieRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ANY($1) ORDER BY id`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get movies by ids: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(
		&m.ID, &m.TmdbID, &m.Title, &m.Overview, &m.ProductionCompanies,
		&m.ReleaseDate, &m.Budget, &m.Revenue, &m.Runtime,
		&m.OriginalLanguage, &m.Genres, &m.Status,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMovies(rows pgx.Rows) ([]*models.Movie, error) {
	var movies []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}
