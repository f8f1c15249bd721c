package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/robogamehub/internal/api/apierr"
	"github.com/mcoot/robogamehub/internal/api/middleware"
	"github.com/mcoot/robogamehub/internal/api/request"
	"github.com/mcoot/robogamehub/internal/api/response"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/auth"
)

// AuthHandler handles sign-in, sign-out and current-user endpoints
type AuthHandler struct {
	authService *auth.Service
	cookies     middleware.CookieConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, cookies middleware.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if msg := req.Validate(); msg != "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError(msg))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		apierr.WriteError(w, err)
		return
	}

	middleware.SetSessionCookie(w, h.cookies, result.Session.Token)
	response.JSON(w, http.StatusOK, response.AuthResponse{
		Message: "Login successful",
		User:    response.UserFromModel(result.User),
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if msg := req.Validate(); msg != "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError(msg))
		return
	}

	result, err := h.authService.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		if !errors.Is(err, model.ErrUsernameTaken) {
			h.logger.Error("registration failed", slog.String("error", err.Error()))
		}
		apierr.WriteError(w, apierr.Describe(err, "Could not create account"))
		return
	}

	middleware.SetSessionCookie(w, h.cookies, result.Session.Token)
	response.JSON(w, http.StatusCreated, response.AuthResponse{
		Message: "Account created",
		User:    response.UserFromModel(result.User),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	token := middleware.ExtractToken(r)
	if session != nil {
		token = session.Token
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.Describe(err, "Could not log out"))
		return
	}

	middleware.ClearSessionCookie(w, h.cookies)
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "Logout successful"})
}

// LogoutAll handles POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		h.logger.Error("logout everywhere failed", slog.String("user_id", string(userID)), slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.Describe(err, "Could not log out"))
		return
	}

	middleware.ClearSessionCookie(w, h.cookies)
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "Logged out of all sessions"})
}

// User handles GET /api/auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			h.logger.Error("failed to fetch user", slog.String("user_id", string(userID)), slog.String("error", err.Error()))
		}
		apierr.WriteError(w, apierr.Describe(err, "Failed to fetch user"))
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
