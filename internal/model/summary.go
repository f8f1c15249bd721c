package model

// XPPerLevel is the experience needed to advance one level
const XPPerLevel = 1000

// RoleSummary is the dashboard view of one role's stats
type RoleSummary struct {
	GamesPlayed int
	GamesWon    int
	WinRatePct  float64
	Kills       int
	PerksOwned  int
}

// Summary aggregates a user's profile into dashboard metrics
type Summary struct {
	UserID           UserID
	DisplayName      string
	Level            int
	XP               int
	XPToNextLevel    int
	LevelProgressPct float64
	Rank             string
	Title            string
	GamesPlayed      int
	HoursPlayed      int
	Achievements     int
	FriendsCount     int
	TotalKills       int
	Banned           bool
	Roles            map[string]RoleSummary
	RecentGames      []GameSessionWithGame
}
