package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/robogamehub/internal/api/apierr"
	"github.com/mcoot/robogamehub/internal/api/response"
	"github.com/mcoot/robogamehub/internal/services/profile"
)

// GameHandler serves the public game catalog
type GameHandler struct {
	profile *profile.Service
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(profileService *profile.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		profile: profileService,
		logger:  logger,
	}
}

// List handles GET /api/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.profile.Catalog(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch games", slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.Describe(err, "Failed to fetch games"))
		return
	}

	response.JSON(w, http.StatusOK, response.GamesFromModel(games))
}
