package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/services"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	UserID   *int64 `json:"userId" validate:"omitempty,min=1"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	MovieIDs []int64 `json:"movieIds" validate:"required,min=2,dive,min=1"`
	UserID   *int64  `json:"userId" validate:"omitempty,min=1"`
}

// InsightHandler handles free-text catalog questions and movie comparisons.
type InsightHandler struct {
	insightService services.InsightService
	logger         *zap.Logger
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(insightService services.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{insightService: insightService, logger: logger}
}

// RegisterRoutes registers the insight handler's routes on the given mux.
func (h *InsightHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("POST /api/compare", h.Compare)
}

// Query handles POST /api/query.
// The answer is relayed as the oracle produced it: structured JSON when
// possible, otherwise a {"answer": ...} wrapper.
func (h *InsightHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.insightService.Query(r.Context(), req.UserID, req.Question)
	if err != nil {
		h.logger.Warn("Query failed", zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		h.logger.Error("Failed to write query response", zap.Error(err))
	}
}

// Compare handles POST /api/compare.
func (h *InsightHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	comparison, err := h.insightService.Compare(r.Context(), req.MovieIDs, req.UserID)
	if err != nil {
		h.logger.Warn("Comparison failed",
			zap.Int64s("movie_ids", req.MovieIDs),
			zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, comparison); err != nil {
		h.logger.Error("Failed to write comparison response", zap.Error(err))
	}
}

func (h *InsightHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	if err := validate.Struct(req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
