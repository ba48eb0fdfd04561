package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/repositories"
	"github.com/cinesage/cinesage-engine/pkg/services"
)

const (
	defaultRecommendationCount = 10
	maxRecommendationCount     = 50
)

// UserListResponse lists the ids of every user with at least one rating.
type UserListResponse struct {
	UserIDs []int64 `json:"user_ids"`
	Count   int     `json:"count"`
}

// UserHandler handles user listing, preferences and recommendations.
type UserHandler struct {
	ratingRepo            repositories.RatingRepository
	recommendationService services.RecommendationService
	logger                *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(
	ratingRepo repositories.RatingRepository,
	recommendationService services.RecommendationService,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		ratingRepo:            ratingRepo,
		recommendationService: recommendationService,
		logger:                logger,
	}
}

// RegisterRoutes registers the user handler's routes on the given mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.List)
	mux.HandleFunc("GET /api/users/{userID}/preferences", h.GetPreferences)
	mux.HandleFunc("GET /api/users/{userID}/recommendations", h.GetRecommendations)
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userIDs, err := h.ratingRepo.ListUserIDs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if userIDs == nil {
		userIDs = []int64{}
	}
	response := UserListResponse{UserIDs: userIDs, Count: len(userIDs)}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write user list", zap.Error(err))
	}
}

// GetPreferences handles GET /api/users/{userID}/preferences.
// Preferences are derived on demand from the user's rating history.
func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	prefs, err := h.recommendationService.GetPreferences(r.Context(), userID)
	if err != nil {
		h.logger.Warn("Failed to derive preferences",
			zap.Int64("user_id", userID),
			zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, prefs); err != nil {
		h.logger.Error("Failed to write preferences", zap.Error(err))
	}
}

// GetRecommendations handles GET /api/users/{userID}/recommendations.
// The optional count query parameter must be in [1,50]; it defaults to 10.
func (h *UserHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	count := defaultRecommendationCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRecommendationCount {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "count must be an integer between 1 and 50"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		count = parsed
	}

	recommendations, err := h.recommendationService.Recommend(r.Context(), userID, count)
	if err != nil {
		h.logger.Warn("Failed to build recommendations",
			zap.Int64("user_id", userID),
			zap.Int("count", count),
			zap.Error(err))
		ServiceErrorResponse(w, h.logger, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, recommendations); err != nil {
		h.logger.Error("Failed to write recommendations", zap.Error(err))
	}
}

func (h *UserHandler) parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "userID must be an integer"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return userID, true
}
