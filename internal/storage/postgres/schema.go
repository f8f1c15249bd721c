package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/robogamehub/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                VARCHAR PRIMARY KEY,
	external_id       VARCHAR UNIQUE,
	username          VARCHAR UNIQUE NOT NULL,
	display_name      VARCHAR NOT NULL,
	password_hash     VARCHAR NOT NULL DEFAULT '',
	profile_image_url VARCHAR,
	level             INTEGER NOT NULL DEFAULT 1,
	xp                INTEGER NOT NULL DEFAULT 0,
	rank              VARCHAR NOT NULL DEFAULT 'Bronze I',
	title             VARCHAR NOT NULL DEFAULT 'New Player',
	friends_count     INTEGER NOT NULL DEFAULT 0,
	stats             JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS games (
	id         VARCHAR PRIMARY KEY,
	name       VARCHAR NOT NULL,
	genre      VARCHAR NOT NULL,
	thumbnail  VARCHAR,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_game_sessions (
	id          VARCHAR PRIMARY KEY,
	user_id     VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	game_id     VARCHAR NOT NULL REFERENCES games(id) ON DELETE RESTRICT,
	playtime    INTEGER NOT NULL DEFAULT 0,
	last_played TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_user_game_sessions_user_last_played
	ON user_game_sessions(user_id, last_played DESC);

CREATE TABLE IF NOT EXISTS sessions (
	sid    VARCHAR PRIMARY KEY,
	sess   JSONB NOT NULL,
	expire TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expire ON sessions(expire);

ALTER TABLE users ADD COLUMN IF NOT EXISTS stats JSONB NOT NULL DEFAULT '{}'::jsonb;
ALTER TABLE users ADD COLUMN IF NOT EXISTS password_hash VARCHAR NOT NULL DEFAULT '';
`

// Columns of the original flat users layout
const (
	legacyExternalIDColumn = "roblox_user_id"
	legacyPasswordColumn   = "password"
)

var legacyCounterColumns = []string{"games_played", "hours_played", "achievements"}

const legacyColumnsQuery = `
SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = 'users' AND column_name = ANY($1)`

const renameExternalIDQuery = `ALTER TABLE users RENAME COLUMN roblox_user_id TO external_id`

// Plaintext passwords are parked here until they are hashed
const renamePasswordQuery = `ALTER TABLE users RENAME COLUMN password TO legacy_password`

const selectLegacyPasswordsQuery = `SELECT id, legacy_password FROM users WHERE legacy_password <> ''`

const setPasswordHashQuery = `UPDATE users SET password_hash = $2 WHERE id = $1`

const dropLegacyPasswordQuery = `ALTER TABLE users DROP COLUMN legacy_password`

const selectLegacyCountersQuery = `
SELECT id, games_played, hours_played, achievements, stats FROM users
WHERE NOT (stats ? 'games_played')`

const setStatsQuery = `UPDATE users SET stats = $2 WHERE id = $1`

// MigrateResult reports what Migrate changed in an existing database
type MigrateResult struct {
	RenamedColumns    []string
	RehashedPasswords int
	FoldedRows        int
}

// Migrate creates the schema if needed and adapts the original flat users
// layout in one transaction: identity and password columns are renamed,
// plaintext passwords are hashed with hashPassword and flat counter columns
// are folded into the stats document.
func (s *Storage) Migrate(ctx context.Context, hashPassword func(string) (string, error)) (*MigrateResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError("begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()

	legacy, err := legacyColumns(ctx, tx)
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{}
	if legacy[legacyExternalIDColumn] {
		if _, err := tx.ExecContext(ctx, renameExternalIDQuery); err != nil {
			return nil, mapError("rename external id column", err)
		}
		result.RenamedColumns = append(result.RenamedColumns, legacyExternalIDColumn)
	}
	if legacy[legacyPasswordColumn] {
		if _, err := tx.ExecContext(ctx, renamePasswordQuery); err != nil {
			return nil, mapError("rename password column", err)
		}
		result.RenamedColumns = append(result.RenamedColumns, legacyPasswordColumn)
	}

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return nil, mapError("apply schema", err)
	}

	if legacy[legacyPasswordColumn] {
		if result.RehashedPasswords, err = rehashPasswords(ctx, tx, hashPassword); err != nil {
			return nil, err
		}
	}

	hasCounters := true
	for _, col := range legacyCounterColumns {
		hasCounters = hasCounters && legacy[col]
	}
	if hasCounters {
		if result.FoldedRows, err = foldLegacyCounters(ctx, tx); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("commit migration", err)
	}
	return result, nil
}

func legacyColumns(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	names := append([]string{legacyExternalIDColumn, legacyPasswordColumn}, legacyCounterColumns...)
	rows, err := tx.QueryContext(ctx, legacyColumnsQuery, pq.Array(names))
	if err != nil {
		return nil, mapError("inspect users columns", err)
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError("inspect users columns", err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("inspect users columns", err)
	}
	return found, nil
}

// rehashPasswords replaces parked plaintext passwords with hashes and drops
// the parked column. Values that are already bcrypt hashes are kept.
func rehashPasswords(ctx context.Context, tx *sql.Tx, hashPassword func(string) (string, error)) (int, error) {
	type legacyPassword struct {
		id       string
		password string
	}

	rows, err := tx.QueryContext(ctx, selectLegacyPasswordsQuery)
	if err != nil {
		return 0, mapError("read legacy passwords", err)
	}
	var pending []legacyPassword
	for rows.Next() {
		var p legacyPassword
		if err := rows.Scan(&p.id, &p.password); err != nil {
			_ = rows.Close()
			return 0, mapError("read legacy passwords", err)
		}
		pending = append(pending, p)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, mapError("read legacy passwords", err)
	}

	for _, p := range pending {
		hash := p.password
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			if hash, err = hashPassword(p.password); err != nil {
				return 0, fmt.Errorf("hash legacy password for %s: %w", p.id, err)
			}
		}
		if _, err := tx.ExecContext(ctx, setPasswordHashQuery, p.id, hash); err != nil {
			return 0, mapError("store password hash", err)
		}
	}

	if _, err := tx.ExecContext(ctx, dropLegacyPasswordQuery); err != nil {
		return 0, mapError("drop legacy password column", err)
	}
	return len(pending), nil
}

// foldLegacyCounters writes the flat counters into each stats document that
// does not carry them yet. Keys already in the document win.
func foldLegacyCounters(ctx context.Context, tx *sql.Tx) (int, error) {
	type legacyRow struct {
		id    string
		stats model.Stats
	}

	rows, err := tx.QueryContext(ctx, selectLegacyCountersQuery)
	if err != nil {
		return 0, mapError("read legacy counters", err)
	}
	var pending []legacyRow
	for rows.Next() {
		var (
			id                               string
			gamesPlayed, hours, achievements sql.NullInt64
			doc                              []byte
		)
		if err := rows.Scan(&id, &gamesPlayed, &hours, &achievements, &doc); err != nil {
			_ = rows.Close()
			return 0, mapError("read legacy counters", err)
		}

		stats := model.StatsFromCounters(int(gamesPlayed.Int64), int(hours.Int64), int(achievements.Int64))
		if len(doc) > 0 {
			if err := json.Unmarshal(doc, &stats); err != nil {
				_ = rows.Close()
				return 0, fmt.Errorf("decode stats for %s: %w", id, err)
			}
			stats.Normalize()
		}
		pending = append(pending, legacyRow{id: id, stats: stats})
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, mapError("read legacy counters", err)
	}

	for _, r := range pending {
		doc, err := json.Marshal(r.stats)
		if err != nil {
			return 0, fmt.Errorf("encode stats for %s: %w", r.id, err)
		}
		if _, err := tx.ExecContext(ctx, setStatsQuery, r.id, string(doc)); err != nil {
			return 0, mapError("fold legacy counters", err)
		}
	}
	return len(pending), nil
}
