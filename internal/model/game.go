package model

import "time"

// GameID uniquely identifies a catalog entry
type GameID string

// Game is an entry in the game catalog
type Game struct {
	ID        GameID
	Name      string
	Genre     string
	Thumbnail string
	CreatedAt time.Time
}

// NewGame holds the fields accepted when adding a catalog entry
type NewGame struct {
	Name      string
	Genre     string
	Thumbnail string
}
