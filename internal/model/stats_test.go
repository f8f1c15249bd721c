package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsNormalizeFillsDefaults(t *testing.T) {
	s := Stats{GamesPlayed: -3}
	s.Normalize()

	assert.Equal(t, 0, s.GamesPlayed)
	assert.NotNil(t, s.Killer.Perks)
	assert.NotNil(t, s.Counselor.Achievements)
}

func TestStatsFromCounters(t *testing.T) {
	s := StatsFromCounters(12, 5, 3)

	assert.Equal(t, 12, s.GamesPlayed)
	assert.Equal(t, 5, s.HoursPlayed)
	assert.Equal(t, 3, s.Achievements)
	assert.Empty(t, s.Killer.Perks)
}

func TestStatsCloneIsDeep(t *testing.T) {
	s := Stats{Killer: RoleStats{Perks: []string{"stalk"}}}
	c := s.Clone()
	c.Killer.Perks[0] = "changed"

	assert.Equal(t, "stalk", s.Killer.Perks[0])
}

func TestStatsUpdatePatchOnlyIncludesSetFields(t *testing.T) {
	games := 4
	u := StatsUpdate{GamesPlayed: &games}

	assert.Equal(t, map[string]int{"games_played": 4}, u.Patch())
	assert.False(t, u.IsEmpty())
	assert.True(t, StatsUpdate{}.IsEmpty())
}

func TestStatsUpdateApplyKeepsUnsetFields(t *testing.T) {
	hours := 9
	s := Stats{GamesPlayed: 2, HoursPlayed: 1, Achievements: 7}
	StatsUpdate{HoursPlayed: &hours}.Apply(&s)

	assert.Equal(t, 2, s.GamesPlayed)
	assert.Equal(t, 9, s.HoursPlayed)
	assert.Equal(t, 7, s.Achievements)
}

func TestUserSanitizedDropsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Username: "alice", PasswordHash: "hash"}
	clean := u.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, "alice", clean.Username)
}

func TestUserUpsertApplyMergesOnlySuppliedFields(t *testing.T) {
	u := &User{Username: "alice", DisplayName: "Alice", Level: 3}
	title := "Veteran"
	(&UserUpsert{Title: &title}).Apply(u)

	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, 3, u.Level)
	assert.Equal(t, "Veteran", u.Title)
}
