package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/mcoot/robogamehub/internal/model"
)

const gameColumns = `id, name, genre, COALESCE(thumbnail, ''), created_at`

// TODO: page the catalog once it outgrows a single response
const listGamesQuery = `SELECT ` + gameColumns + ` FROM games ORDER BY name, id`

const getGameQuery = `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

const createGameQuery = `
INSERT INTO games (id, name, genre, thumbnail, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
RETURNING ` + gameColumns

func (s *Storage) ListGames(ctx context.Context) ([]model.Game, error) {
	rows, err := s.db.QueryContext(ctx, listGamesQuery)
	if err != nil {
		return nil, mapError("list games", err)
	}
	defer rows.Close()

	games := make([]model.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, mapError("list games", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list games", err)
	}
	return games, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := scanGame(s.db.QueryRowContext(ctx, getGameQuery, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get game", err)
	}
	return game, nil
}

func (s *Storage) CreateGame(ctx context.Context, ng *model.NewGame) (*model.Game, error) {
	game, err := scanGame(s.db.QueryRowContext(ctx, createGameQuery,
		uuid.NewString(),
		ng.Name,
		ng.Genre,
		ng.Thumbnail,
		s.clock.Now(),
	))
	if err != nil {
		return nil, mapError("create game", err)
	}
	return game, nil
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	if err := row.Scan(&g.ID, &g.Name, &g.Genre, &g.Thumbnail, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
