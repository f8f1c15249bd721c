package response

import (
	"time"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/profile"
)

// User represents a user in API responses. The password hash is never
// part of it.
type User struct {
	ID              string      `json:"id"`
	ExternalID      string      `json:"external_id,omitempty"`
	Username        string      `json:"username"`
	DisplayName     string      `json:"display_name"`
	ProfileImageURL string      `json:"profile_image_url,omitempty"`
	Level           int         `json:"level"`
	XP              int         `json:"xp"`
	Rank            string      `json:"rank"`
	Title           string      `json:"title"`
	FriendsCount    int         `json:"friends_count"`
	GamesPlayed     int         `json:"games_played"`
	HoursPlayed     int         `json:"hours_played"`
	Achievements    int         `json:"achievements"`
	Stats           model.Stats `json:"stats"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	stats := u.Stats.Clone()
	stats.Normalize()
	return User{
		ID:              string(u.ID),
		ExternalID:      u.ExternalID,
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		ProfileImageURL: u.ProfileImageURL,
		Level:           u.Level,
		XP:              u.XP,
		Rank:            u.Rank,
		Title:           u.Title,
		FriendsCount:    u.FriendsCount,
		GamesPlayed:     stats.GamesPlayed,
		HoursPlayed:     stats.HoursPlayed,
		Achievements:    stats.Achievements,
		Stats:           stats,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// AuthResponse is the response for login and registration
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// MessageResponse carries a human readable status line
type MessageResponse struct {
	Message string `json:"message"`
}

// Game represents a catalog entry
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GameFromModel converts a model.Game
func GameFromModel(g model.Game) Game {
	return Game{
		ID:        string(g.ID),
		Name:      g.Name,
		Genre:     g.Genre,
		Thumbnail: g.Thumbnail,
		CreatedAt: g.CreatedAt,
	}
}

// GamesFromModel converts a catalog listing
func GamesFromModel(games []model.Game) []Game {
	result := make([]Game, len(games))
	for i, g := range games {
		result[i] = GameFromModel(g)
	}
	return result
}

// UserGame is one play history entry with its game
type UserGame struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	GameID        string    `json:"game_id"`
	Playtime      int       `json:"playtime"`
	PlaytimeHours float64   `json:"playtime_hours"`
	LastPlayed    time.Time `json:"last_played"`
	CreatedAt     time.Time `json:"created_at"`
	Game          Game      `json:"game"`
}

// UserGamesFromModel converts play history, preserving order
func UserGamesFromModel(sessions []model.GameSessionWithGame) []UserGame {
	result := make([]UserGame, len(sessions))
	for i, s := range sessions {
		result[i] = UserGame{
			ID:            string(s.ID),
			UserID:        string(s.UserID),
			GameID:        string(s.GameID),
			Playtime:      s.Playtime,
			PlaytimeHours: profile.PlaytimeHours(s.Playtime),
			LastPlayed:    s.LastPlayed,
			CreatedAt:     s.CreatedAt,
			Game:          GameFromModel(s.Game),
		}
	}
	return result
}

// RoleSummary is one role's dashboard metrics
type RoleSummary struct {
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRatePct  float64 `json:"win_rate_pct"`
	Kills       int     `json:"kills"`
	PerksOwned  int     `json:"perks_owned"`
}

// Summary is the dashboard payload
type Summary struct {
	UserID           string                 `json:"user_id"`
	DisplayName      string                 `json:"display_name"`
	Level            int                    `json:"level"`
	XP               int                    `json:"xp"`
	XPToNextLevel    int                    `json:"xp_to_next_level"`
	LevelProgressPct float64                `json:"level_progress_pct"`
	Rank             string                 `json:"rank"`
	Title            string                 `json:"title"`
	GamesPlayed      int                    `json:"games_played"`
	HoursPlayed      int                    `json:"hours_played"`
	Achievements     int                    `json:"achievements"`
	FriendsCount     int                    `json:"friends_count"`
	TotalKills       int                    `json:"total_kills"`
	Banned           bool                   `json:"banned"`
	Roles            map[string]RoleSummary `json:"roles"`
	RecentGames      []UserGame             `json:"recent_games"`
}

// SummaryFromModel converts a model.Summary
func SummaryFromModel(s *model.Summary) Summary {
	roles := make(map[string]RoleSummary, len(s.Roles))
	for name, r := range s.Roles {
		roles[name] = RoleSummary{
			GamesPlayed: r.GamesPlayed,
			GamesWon:    r.GamesWon,
			WinRatePct:  r.WinRatePct,
			Kills:       r.Kills,
			PerksOwned:  r.PerksOwned,
		}
	}
	return Summary{
		UserID:           string(s.UserID),
		DisplayName:      s.DisplayName,
		Level:            s.Level,
		XP:               s.XP,
		XPToNextLevel:    s.XPToNextLevel,
		LevelProgressPct: s.LevelProgressPct,
		Rank:             s.Rank,
		Title:            s.Title,
		GamesPlayed:      s.GamesPlayed,
		HoursPlayed:      s.HoursPlayed,
		Achievements:     s.Achievements,
		FriendsCount:     s.FriendsCount,
		TotalKills:       s.TotalKills,
		Banned:           s.Banned,
		Roles:            roles,
		RecentGames:      UserGamesFromModel(s.RecentGames),
	}
}

// Health is the health check payload
type Health struct {
	Status string `json:"status"`
}
