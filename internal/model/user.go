package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// Profile defaults applied when a row leaves a field unset
const (
	DefaultLevel = 1
	DefaultRank  = "Bronze I"
	DefaultTitle = "New Player"
)

// User is a community member with login credentials and profile stats
type User struct {
	ID              UserID
	ExternalID      string // Roblox user id, empty for local accounts
	Username        string // login username (unique)
	DisplayName     string
	PasswordHash    string // bcrypt hash, never leaves the server
	ProfileImageURL string
	Level           int
	XP              int
	Rank            string
	Title           string
	FriendsCount    int
	Stats           Stats
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Sanitized returns a copy of the user with the credential removed
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.Stats = u.Stats.Clone()
	return &c
}

// ApplyDefaults fills unset profile fields
func (u *User) ApplyDefaults() {
	if u.Level <= 0 {
		u.Level = DefaultLevel
	}
	if u.Rank == "" {
		u.Rank = DefaultRank
	}
	if u.Title == "" {
		u.Title = DefaultTitle
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	u.Stats.Normalize()
}

// NewUser holds the fields accepted when creating a local account
type NewUser struct {
	ExternalID      string
	Username        string
	DisplayName     string
	PasswordHash    string
	ProfileImageURL string
}

// UserUpsert is a partial user keyed by the identity provider's id.
// Nil fields are left untouched on an existing row.
type UserUpsert struct {
	ExternalID      string
	Username        *string
	DisplayName     *string
	ProfileImageURL *string
	Level           *int
	XP              *int
	Rank            *string
	Title           *string
	FriendsCount    *int
	Stats           *Stats
}

// Apply merges the supplied fields into u. Stats, when set, replaces the
// whole document.
func (p *UserUpsert) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = *p.ProfileImageURL
	}
	if p.Level != nil {
		u.Level = *p.Level
	}
	if p.XP != nil {
		u.XP = *p.XP
	}
	if p.Rank != nil {
		u.Rank = *p.Rank
	}
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.FriendsCount != nil {
		u.FriendsCount = *p.FriendsCount
	}
	if p.Stats != nil {
		u.Stats = p.Stats.Clone()
	}
}
