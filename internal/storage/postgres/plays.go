package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mcoot/robogamehub/internal/model"
)

// Rows whose game no longer exists come back with NULL game columns and are
// skipped during the scan
const userGameSessionsQuery = `
SELECT s.id, s.user_id, s.game_id, COALESCE(s.playtime, 0), s.last_played, s.created_at,
	g.id, COALESCE(g.name, ''), COALESCE(g.genre, ''), COALESCE(g.thumbnail, ''), g.created_at
FROM user_game_sessions s
LEFT JOIN games g ON g.id = s.game_id
WHERE s.user_id = $1
ORDER BY s.last_played DESC
LIMIT $2`

const createUserGameSessionQuery = `
INSERT INTO user_game_sessions (id, user_id, game_id, playtime, last_played, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, game_id, playtime, last_played, created_at`

func (s *Storage) GetUserGameSessions(ctx context.Context, userID model.UserID) ([]model.GameSessionWithGame, error) {
	rows, err := s.db.QueryContext(ctx, userGameSessionsQuery, string(userID), model.RecentSessionsLimit)
	if err != nil {
		return nil, mapError("get user game sessions", err)
	}
	defer rows.Close()

	result := make([]model.GameSessionWithGame, 0)
	for rows.Next() {
		var (
			entry         model.GameSessionWithGame
			gameID        sql.NullString
			gameCreatedAt sql.NullTime
		)
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GameID,
			&entry.Playtime,
			&entry.LastPlayed,
			&entry.CreatedAt,
			&gameID,
			&entry.Game.Name,
			&entry.Game.Genre,
			&entry.Game.Thumbnail,
			&gameCreatedAt,
		)
		if err != nil {
			return nil, mapError("get user game sessions", err)
		}
		if !gameID.Valid {
			continue
		}
		entry.Game.ID = model.GameID(gameID.String)
		entry.Game.CreatedAt = gameCreatedAt.Time
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get user game sessions", err)
	}
	return result, nil
}

func (s *Storage) CreateUserGameSession(ctx context.Context, ns *model.NewUserGameSession) (*model.UserGameSession, error) {
	now := s.clock.Now()
	lastPlayed := ns.LastPlayed
	if lastPlayed.IsZero() {
		lastPlayed = now
	}

	var play model.UserGameSession
	err := s.db.QueryRowContext(ctx, createUserGameSessionQuery,
		uuid.NewString(),
		string(ns.UserID),
		string(ns.GameID),
		ns.Playtime,
		lastPlayed,
		now,
	).Scan(&play.ID, &play.UserID, &play.GameID, &play.Playtime, &play.LastPlayed, &play.CreatedAt)
	if err != nil {
		return nil, mapError("create user game session", err)
	}
	return &play, nil
}
