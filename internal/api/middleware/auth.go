package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/robogamehub/internal/api/apierr"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/auth"
)

type contextKey string

const (
	userIDContextKey  contextKey = "user_id"
	sessionContextKey contextKey = "session"
)

// RequireSession rejects requests without a live session with 401 and
// otherwise stores the session and its user id in the request context
func RequireSession(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidSession) {
					logger.Error("session lookup failed", slog.String("error", err.Error()))
				}
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, session)
			ctx = context.WithValue(ctx, userIDContextKey, session.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken extracts the session token from the request
func ExtractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetUserID returns the authenticated user id from the request context
func GetUserID(ctx context.Context) model.UserID {
	id, _ := ctx.Value(userIDContextKey).(model.UserID)
	return id
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetUserID returns the authenticated user id or panics
func MustGetUserID(ctx context.Context) model.UserID {
	id := GetUserID(ctx)
	if id == "" {
		panic("no user in context - session middleware not applied?")
	}
	return id
}
