package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage"
)

const saveSessionQuery = `
INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)
ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire`

const getSessionQuery = `SELECT sess FROM sessions WHERE sid = $1`

const deleteSessionQuery = `DELETE FROM sessions WHERE sid = $1`

const deleteUserSessionsQuery = `DELETE FROM sessions WHERE sess->>'user_id' = $1`

const deleteExpiredSessionsQuery = `DELETE FROM sessions WHERE expire < $1`

// SessionStore keeps login sessions in the sessions table. The session is
// stored as a JSON document next to an indexed expiry column.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session store on an existing pool
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

var _ storage.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, saveSessionQuery, session.Token, string(data), session.ExpiresAt); err != nil {
		return mapError("save session", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, getSessionQuery, token).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get session", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, deleteSessionQuery, token); err != nil {
		return mapError("delete session", err)
	}
	return nil
}

func (s *SessionStore) DeleteUserSessions(ctx context.Context, userID model.UserID) error {
	if _, err := s.db.ExecContext(ctx, deleteUserSessionsQuery, string(userID)); err != nil {
		return mapError("delete user sessions", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteExpiredSessionsQuery, now)
	if err != nil {
		return 0, mapError("delete expired sessions", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return removed, nil
}

// Close is a no-op; the pool belongs to the Storage that created it
func (s *SessionStore) Close() error {
	return nil
}
