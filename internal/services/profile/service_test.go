package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/robogamehub/internal/dependencies/mocks"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage/memory"
	"github.com/mcoot/robogamehub/internal/testutil"
)

func TestXPToNextLevel(t *testing.T) {
	assert.Equal(t, 1000, XPToNextLevel(1, 0))
	assert.Equal(t, 750, XPToNextLevel(3, 2250))
	assert.Equal(t, 0, XPToNextLevel(2, 5000))
}

func TestLevelProgressPct(t *testing.T) {
	assert.Equal(t, 0.0, LevelProgressPct(0))
	assert.Equal(t, 25.0, LevelProgressPct(2250))
	assert.Equal(t, 99.9, LevelProgressPct(999))
	assert.Equal(t, 0.0, LevelProgressPct(-5))
}

func TestWinRatePct(t *testing.T) {
	assert.Equal(t, 0.0, WinRatePct(0, 0))
	assert.Equal(t, 33.3, WinRatePct(1, 3))
	assert.Equal(t, 66.7, WinRatePct(2, 3))
	assert.Equal(t, 100.0, WinRatePct(4, 4))
}

func TestPlaytimeHours(t *testing.T) {
	assert.Equal(t, 0.0, PlaytimeHours(0))
	assert.Equal(t, 1.5, PlaytimeHours(90))
	assert.Equal(t, 0.8, PlaytimeHours(47))
}

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.NewWithClock(s.clock)
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSummaryAggregatesStats() {
	stats := model.Stats{
		GamesPlayed:  20,
		HoursPlayed:  14,
		Achievements: 5,
		Killer:       model.RoleStats{GamesPlayed: 8, GamesWon: 3, Kills: 17, Perks: []string{"stalker", "brute"}},
		Counselor:    model.RoleStats{GamesPlayed: 12, GamesWon: 6, Kills: 1},
	}
	user, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{
		ExternalID:   "rbx-1",
		Username:     testutil.Ptr("jason"),
		Level:        testutil.Ptr(3),
		XP:           testutil.Ptr(2250),
		FriendsCount: testutil.Ptr(4),
		Stats:        &stats,
	})
	s.Require().NoError(err)

	summary, err := s.service.Summary(s.ctx, user.ID)
	s.Require().NoError(err)

	s.Equal(750, summary.XPToNextLevel)
	s.Equal(25.0, summary.LevelProgressPct)
	s.Equal(20, summary.GamesPlayed)
	s.Equal(4, summary.FriendsCount)
	s.Equal(18, summary.TotalKills)
	s.Equal(37.5, summary.Roles[model.RoleKiller].WinRatePct)
	s.Equal(2, summary.Roles[model.RoleKiller].PerksOwned)
	s.Equal(50.0, summary.Roles[model.RoleCounselor].WinRatePct)
	s.Equal(0, summary.Roles[model.RoleCounselor].PerksOwned)
	s.NotNil(summary.RecentGames)
	s.Empty(summary.RecentGames)
}

func (s *ServiceSuite) TestSummaryDefaultsForNewUser() {
	user, err := s.storage.CreateUser(s.ctx, &model.NewUser{Username: "alice", PasswordHash: "x"})
	s.Require().NoError(err)

	summary, err := s.service.Summary(s.ctx, user.ID)
	s.Require().NoError(err)

	s.Equal(1, summary.Level)
	s.Equal(1000, summary.XPToNextLevel)
	s.Equal(model.DefaultRank, summary.Rank)
	s.Equal(0.0, summary.Roles[model.RoleKiller].WinRatePct)
	s.Len(summary.Roles, 2)
}

func (s *ServiceSuite) TestSummaryIncludesRecentGames() {
	user, _ := s.storage.CreateUser(s.ctx, &model.NewUser{Username: "alice", PasswordHash: "x"})
	game, _ := s.storage.CreateGame(s.ctx, &model.NewGame{Name: "Camp Escape", Genre: "Horror"})
	_, err := s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: game.ID, Playtime: 90})
	s.Require().NoError(err)

	summary, err := s.service.Summary(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(summary.RecentGames, 1)
	s.Equal("Camp Escape", summary.RecentGames[0].Game.Name)
}

func (s *ServiceSuite) TestSummaryUnknownUser() {
	_, err := s.service.Summary(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrUserNotFound)
}
