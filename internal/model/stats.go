package model

import "time"

// Role names used as keys in the stats document
const (
	RoleKiller    = "killer"
	RoleCounselor = "counselor"
)

// RoleStats holds per-role counters from the player database
type RoleStats struct {
	GamesPlayed  int      `json:"games_played"`
	GamesWon     int      `json:"games_won"`
	Kills        int      `json:"kills"`
	Perks        []string `json:"perks"`
	Achievements []string `json:"achievements"`
}

// Stats is the document stored in the users.stats column.
// Flat counters sit at the top level next to the role sub-documents.
type Stats struct {
	GamesPlayed  int        `json:"games_played"`
	HoursPlayed  int        `json:"hours_played"`
	Achievements int        `json:"achievements"`
	Killer       RoleStats  `json:"killer"`
	Counselor    RoleStats  `json:"counselor"`
	Banned       bool       `json:"banned"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// StatsFromCounters adapts the legacy flat-column shape into a Stats document
func StatsFromCounters(gamesPlayed, hoursPlayed, achievements int) Stats {
	s := Stats{
		GamesPlayed:  gamesPlayed,
		HoursPlayed:  hoursPlayed,
		Achievements: achievements,
	}
	s.Normalize()
	return s
}

// Normalize replaces missing collections and negative counters with defaults
func (s *Stats) Normalize() {
	s.GamesPlayed = nonNegative(s.GamesPlayed)
	s.HoursPlayed = nonNegative(s.HoursPlayed)
	s.Achievements = nonNegative(s.Achievements)
	s.Killer.normalize()
	s.Counselor.normalize()
}

// Clone returns a deep copy
func (s Stats) Clone() Stats {
	c := s
	c.Killer = s.Killer.clone()
	c.Counselor = s.Counselor.clone()
	if s.CreatedAt != nil {
		t := *s.CreatedAt
		c.CreatedAt = &t
	}
	return c
}

// Role returns the stats for the named role
func (s *Stats) Role(name string) (RoleStats, bool) {
	switch name {
	case RoleKiller:
		return s.Killer, true
	case RoleCounselor:
		return s.Counselor, true
	}
	return RoleStats{}, false
}

func (r *RoleStats) normalize() {
	r.GamesPlayed = nonNegative(r.GamesPlayed)
	r.GamesWon = nonNegative(r.GamesWon)
	r.Kills = nonNegative(r.Kills)
	if r.Perks == nil {
		r.Perks = []string{}
	}
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
}

func (r RoleStats) clone() RoleStats {
	c := r
	if r.Perks != nil {
		c.Perks = append([]string{}, r.Perks...)
	}
	if r.Achievements != nil {
		c.Achievements = append([]string{}, r.Achievements...)
	}
	return c
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// StatsUpdate is a partial update of the top-level counters.
// Nil fields are not written.
type StatsUpdate struct {
	GamesPlayed  *int
	HoursPlayed  *int
	Achievements *int
}

// IsEmpty reports whether no field is set
func (u StatsUpdate) IsEmpty() bool {
	return u.GamesPlayed == nil && u.HoursPlayed == nil && u.Achievements == nil
}

// Patch returns the JSON object merged into the stored document
func (u StatsUpdate) Patch() map[string]int {
	patch := make(map[string]int, 3)
	if u.GamesPlayed != nil {
		patch["games_played"] = *u.GamesPlayed
	}
	if u.HoursPlayed != nil {
		patch["hours_played"] = *u.HoursPlayed
	}
	if u.Achievements != nil {
		patch["achievements"] = *u.Achievements
	}
	return patch
}

// Apply merges the update into s
func (u StatsUpdate) Apply(s *Stats) {
	if u.GamesPlayed != nil {
		s.GamesPlayed = *u.GamesPlayed
	}
	if u.HoursPlayed != nil {
		s.HoursPlayed = *u.HoursPlayed
	}
	if u.Achievements != nil {
		s.Achievements = *u.Achievements
	}
}
