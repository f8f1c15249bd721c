package model

import "time"

// UserGameSessionID identifies a play history entry
type UserGameSessionID string

// RecentSessionsLimit caps the play history returned for a user
const RecentSessionsLimit = 10

// UserGameSession records time a user spent in a game
type UserGameSession struct {
	ID         UserGameSessionID
	UserID     UserID
	GameID     GameID
	Playtime   int // minutes
	LastPlayed time.Time
	CreatedAt  time.Time
}

// GameSessionWithGame is a play history entry joined with its catalog game
type GameSessionWithGame struct {
	UserGameSession
	Game Game
}

// NewUserGameSession holds the fields accepted when recording play time.
// Zero LastPlayed defaults to the current time.
type NewUserGameSession struct {
	UserID     UserID
	GameID     GameID
	Playtime   int
	LastPlayed time.Time
}
