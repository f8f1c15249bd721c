package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutputTo creates a new Output formatter writing to w
func NewOutputTo(w io.Writer, format string) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case []Game:
		o.printGames(v)
	case []UserGame:
		o.printHistory(v)
	case Summary:
		o.printSummary(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Level        int    `json:"level"`
	XP           int    `json:"xp"`
	Rank         string `json:"rank"`
	Title        string `json:"title"`
	GamesPlayed  int    `json:"games_played"`
	HoursPlayed  int    `json:"hours_played"`
	Achievements int    `json:"achievements"`
}

// AuthResult is the sign-in response
type AuthResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// MessageResult is a bare status response
type MessageResult struct {
	Message string `json:"message"`
}

// Game response type
type Game struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Genre string `json:"genre"`
}

// UserGame is one play history entry
type UserGame struct {
	ID            string    `json:"id"`
	Playtime      int       `json:"playtime"`
	PlaytimeHours float64   `json:"playtime_hours"`
	LastPlayed    time.Time `json:"last_played"`
	Game          Game      `json:"game"`
}

// RoleSummary response type
type RoleSummary struct {
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRatePct  float64 `json:"win_rate_pct"`
	Kills       int     `json:"kills"`
	PerksOwned  int     `json:"perks_owned"`
}

// Summary is the dashboard response
type Summary struct {
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

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printUser(u User) {
	o.printf("User: %s (%s)\n", u.DisplayName, u.Username)
	o.printf("Level: %d (%d XP)\n", u.Level, u.XP)
	o.printf("Rank: %s\n", u.Rank)
	o.printf("Title: %s\n", u.Title)
}

func (o *Output) printAuthResult(a AuthResult) {
	if a.Message != "" {
		o.printf("%s\n", a.Message)
	}
	o.printUser(a.User)
}

func (o *Output) printGames(games []Game) {
	if len(games) == 0 {
		o.printf("No games in the catalog\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tGENRE")
	for _, g := range games {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", g.Name, g.Genre)
	}
	_ = tw.Flush()
}

func (o *Output) printHistory(history []UserGame) {
	if len(history) == 0 {
		o.printf("No games played yet\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "GAME\tHOURS\tLAST PLAYED")
	for _, h := range history {
		_, _ = fmt.Fprintf(tw, "%s\t%.1f\t%s\n", h.Game.Name, h.PlaytimeHours, h.LastPlayed.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func (o *Output) printSummary(s Summary) {
	o.printf("%s - %s, %s\n", s.DisplayName, s.Title, s.Rank)
	o.printf("Level %d: %d XP, %d to next level (%.1f%%)\n", s.Level, s.XP, s.XPToNextLevel, s.LevelProgressPct)
	o.printf("Games: %d  Hours: %d  Achievements: %d  Friends: %d\n", s.GamesPlayed, s.HoursPlayed, s.Achievements, s.FriendsCount)
	o.printf("Total kills: %d\n", s.TotalKills)
	if s.Banned {
		o.printf("Account is banned\n")
	}

	names := make([]string, 0, len(s.Roles))
	for name := range s.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := s.Roles[name]
		o.printf("  %s: %d played, %d won (%.1f%%), %d kills, %d perks\n",
			name, r.GamesPlayed, r.GamesWon, r.WinRatePct, r.Kills, r.PerksOwned)
	}

	if len(s.RecentGames) > 0 {
		o.printf("\nRecent games:\n")
		o.printHistory(s.RecentGames)
	}
}
