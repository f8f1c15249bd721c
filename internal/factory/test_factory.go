package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/robogamehub/internal/dependencies/mocks"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/auth"
	"github.com/mcoot/robogamehub/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// Concrete in-memory stores for direct fixture setup
	MemoryStorage  *memory.Storage
	MemorySessions *memory.SessionStore
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.NewWithClock(mockClock)
	sessions := memory.NewSessionStore()

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	app, err := newWithDependencies(store, sessions, mockClock, mockRandom, authCfg, nopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:            app,
		MockClock:      mockClock,
		MockRandom:     mockRandom,
		MemoryStorage:  store,
		MemorySessions: sessions,
	}
}

// CreateUser adds a local account with a hashed password
func (t *TestApp) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	hash, err := t.AuthService.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return t.Storage.CreateUser(ctx, &model.NewUser{Username: username, PasswordHash: hash})
}

// RecordPlay adds a catalog game if needed and a play session for the user
func (t *TestApp) RecordPlay(ctx context.Context, userID model.UserID, gameName string, minutes int, lastPlayed time.Time) (*model.UserGameSession, error) {
	games, err := t.Storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	var gameID model.GameID
	for _, g := range games {
		if g.Name == gameName {
			gameID = g.ID
		}
	}
	if gameID == "" {
		game, err := t.Storage.CreateGame(ctx, &model.NewGame{Name: gameName, Genre: "Horror"})
		if err != nil {
			return nil, err
		}
		gameID = game.ID
	}
	return t.Storage.CreateUserGameSession(ctx, &model.NewUserGameSession{
		UserID:     userID,
		GameID:     gameID,
		Playtime:   minutes,
		LastPlayed: lastPlayed,
	})
}
