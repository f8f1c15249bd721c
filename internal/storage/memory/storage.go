package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/robogamehub/internal/dependencies/clock"
	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	externalIndex map[string]model.UserID
	games         map[model.GameID]*model.Game
	plays         map[model.UserGameSessionID]*model.UserGameSession
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithClock(clock.New())
}

// NewWithClock creates an in-memory storage that timestamps rows with clk
func NewWithClock(clk clock.Clock) *Storage {
	return &Storage{
		clock:         clk,
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		externalIndex: make(map[string]model.UserID),
		games:         make(map[model.GameID]*model.Game),
		plays:         make(map[model.UserGameSessionID]*model.UserGameSession),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, nil
	}
	return copyUser(s.users[id]), nil
}

func (s *Storage) CreateUser(ctx context.Context, nu *model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernameIndex[nu.Username]; ok {
		return nil, model.ErrUsernameTaken
	}
	if nu.ExternalID != "" {
		if _, ok := s.externalIndex[nu.ExternalID]; ok {
			return nil, model.ErrUsernameTaken
		}
	}

	now := s.clock.Now()
	user := &model.User{
		ID:              model.UserID(uuid.NewString()),
		ExternalID:      nu.ExternalID,
		Username:        nu.Username,
		DisplayName:     nu.DisplayName,
		PasswordHash:    nu.PasswordHash,
		ProfileImageURL: nu.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	user.ApplyDefaults()
	s.insertUser(user)

	return copyUser(user), nil
}

func (s *Storage) UpsertUser(ctx context.Context, upsert *model.UserUpsert) (*model.User, error) {
	if upsert.ExternalID == "" {
		return nil, model.ErrMissingIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	// An empty username means "keep the current one", as in the SQL store
	if upsert.Username != nil && *upsert.Username == "" {
		c := *upsert
		c.Username = nil
		upsert = &c
	}

	if id, ok := s.externalIndex[upsert.ExternalID]; ok {
		user := s.users[id]
		oldUsername := user.Username
		if upsert.Username != nil && *upsert.Username != oldUsername {
			if _, taken := s.usernameIndex[*upsert.Username]; taken {
				return nil, model.ErrUsernameTaken
			}
		}
		upsert.Apply(user)
		user.UpdatedAt = now
		if user.Username != oldUsername {
			delete(s.usernameIndex, oldUsername)
			s.usernameIndex[user.Username] = user.ID
		}
		return copyUser(user), nil
	}

	if upsert.Username == nil {
		return nil, model.ErrMissingUsername
	}
	if _, taken := s.usernameIndex[*upsert.Username]; taken {
		return nil, model.ErrUsernameTaken
	}

	user := &model.User{
		ID:         model.UserID(uuid.NewString()),
		ExternalID: upsert.ExternalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	upsert.Apply(user)
	user.ApplyDefaults()
	s.insertUser(user)

	return copyUser(user), nil
}

func (s *Storage) UpdateUserStats(ctx context.Context, id model.UserID, update model.StatsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	update.Apply(&user.Stats)
	user.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Storage) insertUser(user *model.User) {
	s.users[user.ID] = user
	s.usernameIndex[user.Username] = user.ID
	if user.ExternalID != "" {
		s.externalIndex[user.ExternalID] = user.ID
	}
}

// Game catalog operations

func (s *Storage) ListGames(ctx context.Context) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, *g)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].Name == games[j].Name {
			return games[i].ID < games[j].ID
		}
		return games[i].Name < games[j].Name
	})
	return games, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	g := *game
	return &g, nil
}

func (s *Storage) CreateGame(ctx context.Context, ng *model.NewGame) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game := &model.Game{
		ID:        model.GameID(uuid.NewString()),
		Name:      ng.Name,
		Genre:     ng.Genre,
		Thumbnail: ng.Thumbnail,
		CreatedAt: s.clock.Now(),
	}
	s.games[game.ID] = game
	g := *game
	return &g, nil
}

// DeleteGame removes a catalog entry. Play history referencing it is kept
// and filtered out on read.
func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

// Play history operations

func (s *Storage) GetUserGameSessions(ctx context.Context, userID model.UserID) ([]model.GameSessionWithGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plays := make([]*model.UserGameSession, 0)
	for _, p := range s.plays {
		if p.UserID == userID {
			plays = append(plays, p)
		}
	}
	sort.Slice(plays, func(i, j int) bool {
		return plays[i].LastPlayed.After(plays[j].LastPlayed)
	})
	if len(plays) > model.RecentSessionsLimit {
		plays = plays[:model.RecentSessionsLimit]
	}

	result := make([]model.GameSessionWithGame, 0, len(plays))
	for _, p := range plays {
		game, ok := s.games[p.GameID]
		if !ok {
			continue // dangling game reference
		}
		result = append(result, model.GameSessionWithGame{
			UserGameSession: *p,
			Game:            *game,
		})
	}
	return result, nil
}

func (s *Storage) CreateUserGameSession(ctx context.Context, ns *model.NewUserGameSession) (*model.UserGameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ns.UserID]; !ok {
		return nil, model.ErrUserNotFound
	}
	if _, ok := s.games[ns.GameID]; !ok {
		return nil, model.ErrGameNotFound
	}

	now := s.clock.Now()
	lastPlayed := ns.LastPlayed
	if lastPlayed.IsZero() {
		lastPlayed = now
	}

	play := &model.UserGameSession{
		ID:         model.UserGameSessionID(uuid.NewString()),
		UserID:     ns.UserID,
		GameID:     ns.GameID,
		Playtime:   ns.Playtime,
		LastPlayed: lastPlayed,
		CreatedAt:  now,
	}
	s.plays[play.ID] = play
	p := *play
	return &p, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Stats = u.Stats.Clone()
	return &c
}

// SessionStore is an in-memory session store
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*model.Session)}
}

var _ storage.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	c := *session
	return &c, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteUserSessions(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *SessionStore) Close() error {
	return nil
}
