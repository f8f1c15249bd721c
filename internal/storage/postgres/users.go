package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcoot/robogamehub/internal/model"
)

// Legacy rows may hold NULLs, so defaults are substituted on read
const userColumns = `id, COALESCE(external_id, ''), username, COALESCE(display_name, username),
	password_hash, COALESCE(profile_image_url, ''), COALESCE(level, 1), COALESCE(xp, 0),
	COALESCE(rank, 'Bronze I'), COALESCE(title, 'New Player'), COALESCE(friends_count, 0),
	COALESCE(stats, '{}'::jsonb), created_at, updated_at`

const getUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

const getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

const createUserQuery = `
INSERT INTO users (id, external_id, username, display_name, password_hash, profile_image_url, created_at, updated_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), $7, $7)
RETURNING ` + userColumns

// Nil parameters fall back to column defaults on insert and keep the stored
// value on conflict
const upsertUserQuery = `
INSERT INTO users (id, external_id, username, display_name, password_hash, profile_image_url,
	level, xp, rank, title, friends_count, stats, created_at, updated_at)
VALUES ($1, $2, $3, COALESCE($4::varchar, $3), '', $5::varchar,
	COALESCE($6::int, 1), COALESCE($7::int, 0), COALESCE($8::varchar, 'Bronze I'),
	COALESCE($9::varchar, 'New Player'), COALESCE($10::int, 0), COALESCE($11::jsonb, '{}'::jsonb), $12, $12)
ON CONFLICT (external_id) DO UPDATE SET
	username          = EXCLUDED.username,
	display_name      = COALESCE($4::varchar, users.display_name),
	profile_image_url = COALESCE($5::varchar, users.profile_image_url),
	level             = COALESCE($6::int, users.level),
	xp                = COALESCE($7::int, users.xp),
	rank              = COALESCE($8::varchar, users.rank),
	title             = COALESCE($9::varchar, users.title),
	friends_count     = COALESCE($10::int, users.friends_count),
	stats             = COALESCE($11::jsonb, users.stats),
	updated_at        = $12
RETURNING ` + userColumns

// Used when the caller supplies no username, so no row can be inserted
const updateUserByExternalIDQuery = `
UPDATE users SET
	display_name      = COALESCE($2::varchar, display_name),
	profile_image_url = COALESCE($3::varchar, profile_image_url),
	level             = COALESCE($4::int, level),
	xp                = COALESCE($5::int, xp),
	rank              = COALESCE($6::varchar, rank),
	title             = COALESCE($7::varchar, title),
	friends_count     = COALESCE($8::int, friends_count),
	stats             = COALESCE($9::jsonb, stats),
	updated_at        = $10
WHERE external_id = $1
RETURNING ` + userColumns

const updateUserStatsQuery = `
UPDATE users SET stats = COALESCE(stats, '{}'::jsonb) || $2::jsonb, updated_at = $3
WHERE id = $1`

func (s *Storage) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, getUserByIDQuery, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get user by id", err)
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, getUserByUsernameQuery, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get user by username", err)
	}
	return user, nil
}

func (s *Storage) CreateUser(ctx context.Context, nu *model.NewUser) (*model.User, error) {
	displayName := nu.DisplayName
	if displayName == "" {
		displayName = nu.Username
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, createUserQuery,
		uuid.NewString(),
		nu.ExternalID,
		nu.Username,
		displayName,
		nu.PasswordHash,
		nu.ProfileImageURL,
		s.clock.Now(),
	))
	if err != nil {
		return nil, mapError("create user", err)
	}
	return user, nil
}

func (s *Storage) UpsertUser(ctx context.Context, upsert *model.UserUpsert) (*model.User, error) {
	if upsert.ExternalID == "" {
		return nil, model.ErrMissingIdentity
	}

	stats, err := statsParam(upsert.Stats)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	if upsert.Username == nil || *upsert.Username == "" {
		user, err := scanUser(s.db.QueryRowContext(ctx, updateUserByExternalIDQuery,
			upsert.ExternalID,
			upsert.DisplayName,
			upsert.ProfileImageURL,
			upsert.Level,
			upsert.XP,
			upsert.Rank,
			upsert.Title,
			upsert.FriendsCount,
			stats,
			now,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMissingUsername
		}
		if err != nil {
			return nil, mapError("upsert user", err)
		}
		return user, nil
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, upsertUserQuery,
		uuid.NewString(),
		upsert.ExternalID,
		*upsert.Username,
		upsert.DisplayName,
		upsert.ProfileImageURL,
		upsert.Level,
		upsert.XP,
		upsert.Rank,
		upsert.Title,
		upsert.FriendsCount,
		stats,
		now,
	))
	if err != nil {
		return nil, mapError("upsert user", err)
	}
	return user, nil
}

func (s *Storage) UpdateUserStats(ctx context.Context, id model.UserID, update model.StatsUpdate) error {
	patch, err := json.Marshal(update.Patch())
	if err != nil {
		return fmt.Errorf("encode stats patch: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, updateUserStatsQuery, string(id), string(patch), s.clock.Now()); err != nil {
		return mapError("update user stats", err)
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u     model.User
		stats []byte
	)
	err := row.Scan(
		&u.ID,
		&u.ExternalID,
		&u.Username,
		&u.DisplayName,
		&u.PasswordHash,
		&u.ProfileImageURL,
		&u.Level,
		&u.XP,
		&u.Rank,
		&u.Title,
		&u.FriendsCount,
		&stats,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &u.Stats); err != nil {
			return nil, fmt.Errorf("decode stats for user %s: %w", u.ID, err)
		}
	}
	u.Stats.Normalize()
	return &u, nil
}

// statsParam encodes a replacement stats document, or nil to leave it alone
func statsParam(stats *model.Stats) (any, error) {
	if stats == nil {
		return nil, nil
	}
	c := stats.Clone()
	c.Normalize()
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	return string(data), nil
}
