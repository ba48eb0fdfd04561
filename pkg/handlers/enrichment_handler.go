package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/models"
	"github.com/cinesage/cinesage-engine/pkg/repositories"
	"github.com/cinesage/cinesage-engine/pkg/services"
)

// validate is shared by all request-body handlers.
var validate = validator.New()

// RunEnrichmentRequest is the optional body of POST /api/enrichment/run.
type RunEnrichmentRequest struct {
	MovieCount int `json:"movieCount" validate:"omitempty,min=1,max=200"`
}

// RunEnrichmentResponse summarizes a completed enrichment run.
type RunEnrichmentResponse struct {
	Status     string              `json:"status"`
	Requested  int                 `json:"requested"`
	Enriched   int                 `json:"enriched"`
	MovieIDs   []int64             `json:"movieIds"`
	Enrichment []*EnrichedMovieRef `json:"movies"`
}

// EnrichedMovieRef identifies one movie touched by a run.
type EnrichedMovieRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// EnrichmentHandler handles catalog enrichment HTTP requests.
type EnrichmentHandler struct {
	enrichmentService services.EnrichmentService
	movieRepo         repositories.MovieRepository
	enrichmentRepo    repositories.EnrichmentRepository
	defaultMovieCount int
	logger            *zap.Logger
}

// NewEnrichmentHandler creates a new enrichment handler.
func NewEnrichmentHandler(
	enrichmentService services.EnrichmentService,
	movieRepo repositories.MovieRepository,
	enrichmentRepo repositories.EnrichmentRepository,
	defaultMovieCount int,
	logger *zap.Logger,
) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
		movieRepo:         movieRepo,
		enrichmentRepo:    enrichmentRepo,
		defaultMovieCount: defaultMovieCount,
		logger:            logger,
	}
}

// RegisterRoutes registers the enrichment handler's routes on the given mux.
func (h *EnrichmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/enrichment/run", h.Run)
	mux.HandleFunc("GET /api/enrichment", h.List)
	mux.HandleFunc("GET /api/enrichment/{movieID}", h.GetByMovie)
}

// Run handles POST /api/enrichment/run.
// The body is optional; without one the configured default movie count is
// used. The run is synchronous and returns the movies that were enriched.
func (h *EnrichmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunEnrichmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := validate.Struct(req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	movieCount := req.MovieCount
	if movieCount == 0 {
		movieCount = h.defaultMovieCount
	}

	movies, err := h.enrichmentService.Run(r.Context(), movieCount)
	if err != nil {
		h.logger.Error("Enrichment run failed",
			zap.Int("movie_count", movieCount),
			zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	response := RunEnrichmentResponse{
		Status:    "completed",
		Requested: movieCount,
		Enriched:  len(movies),
	}
	for _, m := range movies {
		response.MovieIDs = append(response.MovieIDs, m.ID)
		response.Enrichment = append(response.Enrichment, &EnrichedMovieRef{ID: m.ID, Title: m.Title})
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write run response", zap.Error(err))
	}
}

// List handles GET /api/enrichment.
// Returns every movie that has an enrichment row, with the row attached.
func (h *EnrichmentHandler) List(w http.ResponseWriter, r *http.Request) {
	enriched, err := h.enrichmentRepo.ListEnrichedMovies(r.Context())
	if err != nil {
		h.logger.Error("Failed to list enriched movies", zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if enriched == nil {
		enriched = []*models.EnrichedMovie{}
	}
	if err := WriteJSON(w, http.StatusOK, enriched); err != nil {
		h.logger.Error("Failed to write enrichment list", zap.Error(err))
	}
}

// GetByMovie handles GET /api/enrichment/{movieID}.
func (h *EnrichmentHandler) GetByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(r.PathValue("movieID"), 10, 64)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "movieID must be an integer"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	movie, err := h.movieRepo.GetByID(r.Context(), movieID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	enrichment, err := h.enrichmentRepo.GetByMovie(r.Context(), movieID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	response := models.EnrichedMovie{Movie: *movie, Enrichment: enrichment}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write enrichment response", zap.Error(err))
	}
}
