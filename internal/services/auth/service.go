package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/robogamehub/internal/dependencies/clock"
	"github.com/mcoot/robogamehub/internal/dependencies/random"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrSessionStore       = errors.New("session store failure")
)

// tokenBytes is the amount of randomness in a session token
const tokenBytes = 32

// Compared against when the username is unknown or the account has no usable
// password hash so every failure path pays for a bcrypt comparison
const dummyPassword = "robogamehub-timing-parity"

// Result is a freshly created session and the user it belongs to
type Result struct {
	Session *model.Session
	User    *model.User
}

// Service handles authentication and session management
type Service struct {
	users    storage.Storage
	sessions storage.SessionStore
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	sessionDuration time.Duration
	bcryptCost      int

	dummyHash   []byte
	compareHash func(hash, password []byte) error
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new auth service. It fails if the configured bcrypt cost
// cannot produce a hash.
func New(users storage.Storage, sessions storage.SessionStore, clk clock.Clock, rnd random.Random, logger *slog.Logger, cfg Config) (*Service, error) {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("build dummy password hash: %w", err)
	}

	return &Service{
		users:           users,
		sessions:        sessions,
		clock:           clk,
		random:          rnd,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
		dummyHash:       dummyHash,
		compareHash:     bcrypt.CompareHashAndPassword,
	}, nil
}

// SessionDuration is the absolute lifetime of a new session
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// HashPassword hashes a plaintext password with the configured cost
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks credentials and starts a session
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil || !usableHash(user.PasswordHash) {
		_ = s.compareHash(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := s.compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Session: session, User: user.Sanitized()}, nil
}

// Register creates a local account and starts a session
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*Result, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, &model.NewUser{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Session: session, User: user.Sanitized()}, nil
}

// Logout ends a session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	return nil
}

// LogoutAll ends every session held by a user
func (s *Service) LogoutAll(ctx context.Context, userID model.UserID) error {
	if err := s.sessions.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	s.logger.Info("all sessions ended", slog.String("user_id", string(userID)))
	return nil
}

// ValidateSession returns the live session for token. Expired sessions
// found here are removed.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	if session.Expired(s.clock.Now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidSession
	}

	return session, nil
}

// CurrentUser returns the sanitized user for a validated session
func (s *Service) CurrentUser(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpiredSessions(ctx, s.clock.Now())
	if err != nil {
		return removed, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", slog.Int64("count", removed))
	}
	return removed, nil
}

// createSession persists a new session for a user
func (s *Service) createSession(ctx context.Context, userID model.UserID) (*model.Session, error) {
	token, err := s.random.Token(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.clock.Now()

	session := &model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	return session, nil
}

// usableHash reports whether hash is a bcrypt hash a password can match.
// Accounts upserted from the external directory have none.
func usableHash(hash string) bool {
	if hash == "" {
		return false
	}
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}
