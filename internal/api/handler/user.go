package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/robogamehub/internal/api/apierr"
	"github.com/mcoot/robogamehub/internal/api/middleware"
	"github.com/mcoot/robogamehub/internal/api/response"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/profile"
)

// UserHandler serves the signed-in user's dashboard data
type UserHandler struct {
	profile *profile.Service
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(profileService *profile.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		profile: profileService,
		logger:  logger,
	}
}

// Games handles GET /api/user/games
func (h *UserHandler) Games(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	sessions, err := h.profile.RecentGames(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch user games", slog.String("user_id", string(userID)), slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.Describe(err, "Failed to fetch user games"))
		return
	}

	response.JSON(w, http.StatusOK, response.UserGamesFromModel(sessions))
}

// Summary handles GET /api/user/summary
func (h *UserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	summary, err := h.profile.Summary(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			h.logger.Error("failed to build summary", slog.String("user_id", string(userID)), slog.String("error", err.Error()))
		}
		apierr.WriteError(w, apierr.Describe(err, "Failed to fetch summary"))
		return
	}

	response.JSON(w, http.StatusOK, response.SummaryFromModel(summary))
}
