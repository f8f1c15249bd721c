package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/robogamehub/internal/api/handler"
	"github.com/mcoot/robogamehub/internal/api/middleware"
	"github.com/mcoot/robogamehub/internal/services/auth"
	"github.com/mcoot/robogamehub/internal/services/profile"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	ProfileService *profile.Service
	Cookies        middleware.CookieConfig
	HealthChecks   []handler.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Cookies, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.ProfileService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.ProfileService, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Logger, cfg.HealthChecks...)

	// Create middleware
	sessionMiddleware := middleware.RequireSession(cfg.AuthService, cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Session-protected routes
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(sessionMiddleware)
	authProtected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/logout-all", authHandler.LogoutAll).Methods(http.MethodPost)
	authProtected.HandleFunc("/user", authHandler.User).Methods(http.MethodGet)

	user := api.PathPrefix("/user").Subrouter()
	user.Use(sessionMiddleware)
	user.HandleFunc("/games", userHandler.Games).Methods(http.MethodGet)
	user.HandleFunc("/summary", userHandler.Summary).Methods(http.MethodGet)

	return r
}
