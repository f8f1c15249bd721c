package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/robogamehub/internal/dependencies/mocks"
	"github.com/mcoot/robogamehub/internal/model"
)

type StorageSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = NewWithClock(s.clock)
	s.ctx = context.Background()
}

func (s *StorageSuite) createUser(username string) *model.User {
	user, err := s.storage.CreateUser(s.ctx, &model.NewUser{
		Username:     username,
		PasswordHash: "hash",
	})
	s.Require().NoError(err)
	return user
}

func (s *StorageSuite) createGame(name string) *model.Game {
	game, err := s.storage.CreateGame(s.ctx, &model.NewGame{Name: name, Genre: "Horror"})
	s.Require().NoError(err)
	return game
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	created := s.createUser("alice")

	byID, err := s.storage.GetUserByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal(model.DefaultLevel, byID.Level)
	s.Equal(model.DefaultRank, byID.Rank)
	s.Equal("alice", byID.DisplayName)

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(created.ID, byName.ID)
}

func (s *StorageSuite) TestGetUserAbsentReturnsNil() {
	user, err := s.storage.GetUserByID(s.ctx, "missing")
	s.Require().NoError(err)
	s.Nil(user)

	user, err = s.storage.GetUserByUsername(s.ctx, "missing")
	s.Require().NoError(err)
	s.Nil(user)
}

func (s *StorageSuite) TestCreateUserDuplicateUsername() {
	s.createUser("alice")

	_, err := s.storage.CreateUser(s.ctx, &model.NewUser{Username: "alice", PasswordHash: "x"})
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *StorageSuite) TestReturnedUserIsACopy() {
	created := s.createUser("alice")
	created.DisplayName = "mutated"

	stored, _ := s.storage.GetUserByID(s.ctx, created.ID)
	s.Equal("alice", stored.DisplayName)
}

// Upsert tests

func (s *StorageSuite) TestUpsertInsertsThenMerges() {
	username := "robloxian"
	display := "Robloxian"
	first, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{
		ExternalID:  "rbx-1",
		Username:    &username,
		DisplayName: &display,
	})
	s.Require().NoError(err)

	level := 7
	newDisplay := "Renamed"
	second, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{
		ExternalID:  "rbx-1",
		Level:       &level,
		DisplayName: &newDisplay,
	})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("robloxian", second.Username)
	s.Equal("Renamed", second.DisplayName)
	s.Equal(7, second.Level)
	s.Len(s.storage.users, 1)
}

func (s *StorageSuite) TestUpsertEmptyUsernameKeepsExisting() {
	username := "alice"
	_, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{ExternalID: "7", Username: &username})
	s.Require().NoError(err)

	empty, title := "", "Champ"
	upsert := &model.UserUpsert{ExternalID: "7", Username: &empty, Title: &title}
	updated, err := s.storage.UpsertUser(s.ctx, upsert)
	s.Require().NoError(err)

	s.Equal("alice", updated.Username)
	s.Equal("Champ", updated.Title)
	s.Same(&empty, upsert.Username)

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().NotNil(byName)
	s.Equal(updated.ID, byName.ID)

	blank, err := s.storage.GetUserByUsername(s.ctx, "")
	s.Require().NoError(err)
	s.Nil(blank)
}

func (s *StorageSuite) TestUpsertStatsReplacesDocument() {
	username := "alice"
	_, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{
		ExternalID: "7",
		Username:   &username,
		Stats:      &model.Stats{Killer: model.RoleStats{Kills: 5}},
	})
	s.Require().NoError(err)

	updated, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{
		ExternalID: "7",
		Stats:      &model.Stats{GamesPlayed: 3},
	})
	s.Require().NoError(err)

	s.Equal(3, updated.Stats.GamesPlayed)
	s.Zero(updated.Stats.Killer.Kills)
}

func (s *StorageSuite) TestUpsertNewIdentityWithEmptyUsername() {
	empty := ""
	_, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{ExternalID: "rbx-3", Username: &empty})
	s.ErrorIs(err, model.ErrMissingUsername)
}

func (s *StorageSuite) TestUpsertNewIdentityRequiresUsername() {
	_, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{ExternalID: "rbx-2"})
	s.ErrorIs(err, model.ErrMissingUsername)
}

func (s *StorageSuite) TestUpsertRequiresIdentity() {
	_, err := s.storage.UpsertUser(s.ctx, &model.UserUpsert{})
	s.ErrorIs(err, model.ErrMissingIdentity)
}

// Stats tests

func (s *StorageSuite) TestUpdateUserStatsIsPartial() {
	user := s.createUser("alice")
	games, hours := 5, 2
	s.Require().NoError(s.storage.UpdateUserStats(s.ctx, user.ID, model.StatsUpdate{GamesPlayed: &games, HoursPlayed: &hours}))

	s.clock.Advance(time.Minute)
	achievements := 3
	s.Require().NoError(s.storage.UpdateUserStats(s.ctx, user.ID, model.StatsUpdate{Achievements: &achievements}))

	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.Equal(5, stored.Stats.GamesPlayed)
	s.Equal(2, stored.Stats.HoursPlayed)
	s.Equal(3, stored.Stats.Achievements)
	s.Equal(s.clock.Now(), stored.UpdatedAt)
}

func (s *StorageSuite) TestUpdateUserStatsEmptyStillTouchesUpdatedAt() {
	user := s.createUser("alice")
	s.clock.Advance(time.Hour)

	s.Require().NoError(s.storage.UpdateUserStats(s.ctx, user.ID, model.StatsUpdate{}))

	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.Equal(s.clock.Now(), stored.UpdatedAt)
}

// Catalog tests

func (s *StorageSuite) TestListGamesSortedByName() {
	s.createGame("Zombie Run")
	s.createGame("Camp Escape")

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal("Camp Escape", games[0].Name)
}

func (s *StorageSuite) TestListGamesEmpty() {
	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

// Play history tests

func (s *StorageSuite) TestGetUserGameSessionsOrderAndLimit() {
	user := s.createUser("alice")
	game := s.createGame("Camp Escape")
	base := s.clock.Now()

	for i := 0; i < 12; i++ {
		_, err := s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{
			UserID:     user.ID,
			GameID:     game.ID,
			Playtime:   i,
			LastPlayed: base.Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	sessions, err := s.storage.GetUserGameSessions(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(sessions, model.RecentSessionsLimit)
	for i := 1; i < len(sessions); i++ {
		s.True(sessions[i-1].LastPlayed.After(sessions[i].LastPlayed), fmt.Sprintf("entry %d out of order", i))
	}
	s.Equal(11, sessions[0].Playtime)
	s.Equal("Camp Escape", sessions[0].Game.Name)
}

func (s *StorageSuite) TestGetUserGameSessionsSkipsDanglingGames() {
	user := s.createUser("alice")
	kept := s.createGame("Kept")
	removed := s.createGame("Removed")

	_, _ = s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: kept.ID})
	_, _ = s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: removed.ID})
	s.Require().NoError(s.storage.DeleteGame(s.ctx, removed.ID))

	sessions, err := s.storage.GetUserGameSessions(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(kept.ID, sessions[0].Game.ID)
}

func (s *StorageSuite) TestCreatedSessionIsMostRecent() {
	user := s.createUser("alice")
	game := s.createGame("Camp Escape")
	_, _ = s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{
		UserID: user.ID, GameID: game.ID, LastPlayed: s.clock.Now().Add(-time.Hour),
	})

	created, err := s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: game.ID, Playtime: 30})
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), created.LastPlayed)

	sessions, _ := s.storage.GetUserGameSessions(s.ctx, user.ID)
	s.Require().NotEmpty(sessions)
	s.Equal(created.ID, sessions[0].ID)
}

func (s *StorageSuite) TestGetUserGameSessionsOtherUserEmpty() {
	user := s.createUser("alice")
	other := s.createUser("bob")
	game := s.createGame("Camp Escape")
	_, _ = s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: game.ID})

	sessions, err := s.storage.GetUserGameSessions(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *StorageSuite) TestCreateUserGameSessionUnknownGame() {
	user := s.createUser("alice")

	_, err := s.storage.CreateUserGameSession(s.ctx, &model.NewUserGameSession{UserID: user.ID, GameID: "missing"})
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Session store tests

type SessionStoreSuite struct {
	suite.Suite
	store *SessionStore
	ctx   context.Context
	now   time.Time
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewSessionStore()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *SessionStoreSuite) TestSaveGetDelete() {
	session := &model.Session{Token: "tok", UserID: "u1", CreatedAt: s.now, ExpiresAt: s.now.Add(time.Hour)}
	s.Require().NoError(s.store.SaveSession(s.ctx, session))

	got, err := s.store.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), got.UserID)

	s.Require().NoError(s.store.DeleteSession(s.ctx, "tok"))
	got, err = s.store.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *SessionStoreSuite) TestDeleteExpiredSessions() {
	_ = s.store.SaveSession(s.ctx, &model.Session{Token: "old", ExpiresAt: s.now.Add(-time.Minute)})
	_ = s.store.SaveSession(s.ctx, &model.Session{Token: "new", ExpiresAt: s.now.Add(time.Minute)})

	removed, err := s.store.DeleteExpiredSessions(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), removed)

	got, _ := s.store.GetSession(s.ctx, "new")
	s.NotNil(got)
}

func (s *SessionStoreSuite) TestDeleteUserSessions() {
	_ = s.store.SaveSession(s.ctx, &model.Session{Token: "a1", UserID: "alice", ExpiresAt: s.now.Add(time.Hour)})
	_ = s.store.SaveSession(s.ctx, &model.Session{Token: "a2", UserID: "alice", ExpiresAt: s.now.Add(time.Hour)})
	_ = s.store.SaveSession(s.ctx, &model.Session{Token: "b1", UserID: "bob", ExpiresAt: s.now.Add(time.Hour)})

	s.Require().NoError(s.store.DeleteUserSessions(s.ctx, "alice"))

	got, _ := s.store.GetSession(s.ctx, "a1")
	s.Nil(got)
	got, _ = s.store.GetSession(s.ctx, "a2")
	s.Nil(got)
	got, _ = s.store.GetSession(s.ctx, "b1")
	s.NotNil(got)
}
