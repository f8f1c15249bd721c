package storage

import (
	"context"
	"time"

	"github.com/mcoot/robogamehub/internal/model"
)

// Storage defines the interface for user, catalog, and play history persistence.
// Lookups return (nil, nil) when the record does not exist.
type Storage interface {
	// User operations
	GetUserByID(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.NewUser) (*model.User, error)
	UpsertUser(ctx context.Context, upsert *model.UserUpsert) (*model.User, error)
	UpdateUserStats(ctx context.Context, id model.UserID, update model.StatsUpdate) error

	// Game catalog operations
	ListGames(ctx context.Context) ([]model.Game, error)
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	CreateGame(ctx context.Context, game *model.NewGame) (*model.Game, error)

	// Play history operations
	GetUserGameSessions(ctx context.Context, userID model.UserID) ([]model.GameSessionWithGame, error)
	CreateUserGameSession(ctx context.Context, session *model.NewUserGameSession) (*model.UserGameSession, error)

	Ping(ctx context.Context) error
	Close() error
}

// SessionStore persists login sessions.
// Get returns (nil, nil) for unknown tokens; callers check expiry.
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteUserSessions removes every session held by userID
	DeleteUserSessions(ctx context.Context, userID model.UserID) error
	// DeleteExpiredSessions removes sessions that expired before now and
	// returns how many were removed
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	Close() error
}
