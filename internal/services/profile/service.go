package profile

import (
	"context"
	"math"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage"
)

// Service builds the dashboard view of a user's profile and play history
type Service struct {
	storage storage.Storage
}

// New creates a new profile service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// RecentGames returns the user's most recent play sessions, newest first
func (s *Service) RecentGames(ctx context.Context, userID model.UserID) ([]model.GameSessionWithGame, error) {
	return s.storage.GetUserGameSessions(ctx, userID)
}

// Catalog returns every game ordered by name
func (s *Service) Catalog(ctx context.Context) ([]model.Game, error) {
	return s.storage.ListGames(ctx)
}

// Summary aggregates the user's stats into dashboard metrics
func (s *Service) Summary(ctx context.Context, userID model.UserID) (*model.Summary, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	recent, err := s.storage.GetUserGameSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := user.Stats.Clone()
	stats.Normalize()

	summary := &model.Summary{
		UserID:           user.ID,
		DisplayName:      user.DisplayName,
		Level:            user.Level,
		XP:               user.XP,
		XPToNextLevel:    XPToNextLevel(user.Level, user.XP),
		LevelProgressPct: LevelProgressPct(user.XP),
		Rank:             user.Rank,
		Title:            user.Title,
		GamesPlayed:      stats.GamesPlayed,
		HoursPlayed:      stats.HoursPlayed,
		Achievements:     stats.Achievements,
		FriendsCount:     user.FriendsCount,
		Banned:           stats.Banned,
		Roles:            make(map[string]model.RoleSummary, 2),
		RecentGames:      recent,
	}

	for _, name := range []string{model.RoleKiller, model.RoleCounselor} {
		role, _ := stats.Role(name)
		summary.Roles[name] = model.RoleSummary{
			GamesPlayed: role.GamesPlayed,
			GamesWon:    role.GamesWon,
			WinRatePct:  WinRatePct(role.GamesWon, role.GamesPlayed),
			Kills:       role.Kills,
			PerksOwned:  len(role.Perks),
		}
		summary.TotalKills += role.Kills
	}

	return summary, nil
}

// XPToNextLevel is the experience still needed to reach the next level
func XPToNextLevel(level, xp int) int {
	return max(0, level*model.XPPerLevel-xp)
}

// LevelProgressPct is the progress through the current level, capped at 100
func LevelProgressPct(xp int) float64 {
	if xp < 0 {
		return 0
	}
	return math.Min(100, float64(xp%model.XPPerLevel)/10)
}

// WinRatePct is won/played as a percentage to one decimal place
func WinRatePct(won, played int) float64 {
	if played <= 0 {
		return 0
	}
	return round1(float64(won) / float64(played) * 100)
}

// PlaytimeHours converts minutes to hours to one decimal place
func PlaytimeHours(minutes int) float64 {
	return round1(float64(minutes) / 60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
