// Package seed loads fixture data (catalog games, accounts and play history)
// from a YAML document into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage"
)

// File is the top-level seed document
type File struct {
	Games []Game `yaml:"games"`
	Users []User `yaml:"users"`
	Plays []Play `yaml:"plays"`
}

// Game is a catalog entry
type Game struct {
	Name      string `yaml:"name"`
	Genre     string `yaml:"genre"`
	Thumbnail string `yaml:"thumbnail"`
}

// User is an account. Users with an external_id are merged through the
// identity upsert; others are created as local accounts.
type User struct {
	ExternalID      string `yaml:"external_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DisplayName     string `yaml:"display_name"`
	ProfileImageURL string `yaml:"profile_image_url"`
	Level           *int   `yaml:"level"`
	XP              *int   `yaml:"xp"`
	Rank            string `yaml:"rank"`
	Title           string `yaml:"title"`
	FriendsCount    *int   `yaml:"friends_count"`
	Stats           *Stats `yaml:"stats"`
}

// Stats mirrors model.Stats with YAML keys
type Stats struct {
	GamesPlayed  int       `yaml:"games_played"`
	HoursPlayed  int       `yaml:"hours_played"`
	Achievements int       `yaml:"achievements"`
	Banned       bool      `yaml:"banned"`
	Killer       RoleStats `yaml:"killer"`
	Counselor    RoleStats `yaml:"counselor"`
}

// RoleStats mirrors model.RoleStats with YAML keys
type RoleStats struct {
	GamesPlayed  int      `yaml:"games_played"`
	GamesWon     int      `yaml:"games_won"`
	Kills        int      `yaml:"kills"`
	Perks        []string `yaml:"perks"`
	Achievements []string `yaml:"achievements"`
}

// Play is one play history entry, referencing a user and game by name
type Play struct {
	Username   string    `yaml:"username"`
	Game       string    `yaml:"game"`
	Playtime   int       `yaml:"playtime"`
	LastPlayed time.Time `yaml:"last_played"`
}

// Result counts what Apply wrote
type Result struct {
	GamesCreated int
	UsersWritten int
	UsersSkipped int
	PlaysCreated int
}

// Hasher hashes plaintext seed passwords
type Hasher interface {
	HashPassword(password string) (string, error)
}

// Parse decodes a seed document
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// LoadFile opens and parses the seed document at path
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return Parse(fh)
}

// Seeder writes seed documents into a store
type Seeder struct {
	store  storage.Storage
	hasher Hasher
	logger *slog.Logger
}

// New creates a seeder
func New(store storage.Storage, hasher Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, hasher: hasher, logger: logger}
}

// Apply writes games, then users, then plays. Existing games and local
// accounts are left as they are, so a document can be applied repeatedly.
func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result

	gameIDs, err := s.seedGames(ctx, f.Games, &res)
	if err != nil {
		return res, err
	}

	for _, u := range f.Users {
		written, err := s.seedUser(ctx, u)
		if err != nil {
			return res, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		if written {
			res.UsersWritten++
		} else {
			res.UsersSkipped++
		}
	}

	for i, p := range f.Plays {
		user, err := s.store.GetUserByUsername(ctx, p.Username)
		if err != nil {
			return res, err
		}
		if user == nil {
			return res, fmt.Errorf("play %d: %w: %s", i, model.ErrUserNotFound, p.Username)
		}
		gameID, ok := gameIDs[p.Game]
		if !ok {
			return res, fmt.Errorf("play %d: %w: %s", i, model.ErrGameNotFound, p.Game)
		}
		if _, err := s.store.CreateUserGameSession(ctx, &model.NewUserGameSession{
			UserID:     user.ID,
			GameID:     gameID,
			Playtime:   p.Playtime,
			LastPlayed: p.LastPlayed,
		}); err != nil {
			return res, fmt.Errorf("play %d: %w", i, err)
		}
		res.PlaysCreated++
	}

	s.logger.Info("seed applied",
		slog.Int("games_created", res.GamesCreated),
		slog.Int("users_written", res.UsersWritten),
		slog.Int("users_skipped", res.UsersSkipped),
		slog.Int("plays_created", res.PlaysCreated),
	)
	return res, nil
}

func (s *Seeder) seedGames(ctx context.Context, games []Game, res *Result) (map[string]model.GameID, error) {
	existing, err := s.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]model.GameID, len(existing)+len(games))
	for _, g := range existing {
		ids[g.Name] = g.ID
	}

	for _, g := range games {
		if _, ok := ids[g.Name]; ok {
			continue
		}
		created, err := s.store.CreateGame(ctx, &model.NewGame{Name: g.Name, Genre: g.Genre, Thumbnail: g.Thumbnail})
		if err != nil {
			return nil, fmt.Errorf("seed game %q: %w", g.Name, err)
		}
		ids[g.Name] = created.ID
		res.GamesCreated++
	}
	return ids, nil
}

func (s *Seeder) seedUser(ctx context.Context, u User) (bool, error) {
	if u.Username == "" {
		return false, model.ErrMissingUsername
	}

	existing, err := s.store.GetUserByUsername(ctx, u.Username)
	if err != nil {
		return false, err
	}

	if existing == nil && (u.ExternalID == "" || u.Password != "") {
		hash := ""
		if u.Password != "" {
			if hash, err = s.hasher.HashPassword(u.Password); err != nil {
				return false, err
			}
		}
		existing, err = s.store.CreateUser(ctx, &model.NewUser{
			ExternalID:      u.ExternalID,
			Username:        u.Username,
			DisplayName:     u.DisplayName,
			PasswordHash:    hash,
			ProfileImageURL: u.ProfileImageURL,
		})
		if err != nil {
			return false, err
		}
		if u.ExternalID == "" {
			return true, s.seedCounters(ctx, existing.ID, u.Stats)
		}
	} else if u.ExternalID == "" {
		s.logger.Debug("seed user exists", slog.String("username", u.Username))
		return false, nil
	}

	_, err = s.store.UpsertUser(ctx, u.upsert())
	return err == nil, err
}

func (s *Seeder) seedCounters(ctx context.Context, id model.UserID, st *Stats) error {
	if st == nil {
		return nil
	}
	return s.store.UpdateUserStats(ctx, id, model.StatsUpdate{
		GamesPlayed:  &st.GamesPlayed,
		HoursPlayed:  &st.HoursPlayed,
		Achievements: &st.Achievements,
	})
}

func (u User) upsert() *model.UserUpsert {
	p := &model.UserUpsert{
		ExternalID:   u.ExternalID,
		Username:     &u.Username,
		Level:        u.Level,
		XP:           u.XP,
		FriendsCount: u.FriendsCount,
	}
	if u.DisplayName != "" {
		p.DisplayName = &u.DisplayName
	}
	if u.ProfileImageURL != "" {
		p.ProfileImageURL = &u.ProfileImageURL
	}
	if u.Rank != "" {
		p.Rank = &u.Rank
	}
	if u.Title != "" {
		p.Title = &u.Title
	}
	if u.Stats != nil {
		stats := u.Stats.model()
		p.Stats = &stats
	}
	return p
}

func (s Stats) model() model.Stats {
	m := model.Stats{
		GamesPlayed:  s.GamesPlayed,
		HoursPlayed:  s.HoursPlayed,
		Achievements: s.Achievements,
		Banned:       s.Banned,
		Killer:       s.Killer.model(),
		Counselor:    s.Counselor.model(),
	}
	m.Normalize()
	return m
}

func (r RoleStats) model() model.RoleStats {
	return model.RoleStats{
		GamesPlayed:  r.GamesPlayed,
		GamesWon:     r.GamesWon,
		Kills:        r.Kills,
		Perks:        r.Perks,
		Achievements: r.Achievements,
	}
}
