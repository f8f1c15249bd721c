package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/robogamehub/internal/api"
	"github.com/mcoot/robogamehub/internal/api/middleware"
	"github.com/mcoot/robogamehub/internal/factory"
	"github.com/mcoot/robogamehub/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app       *factory.TestApp
	server    *httptest.Server
	tokenFile string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    s.app.AuthService,
		ProfileService: s.app.ProfileService,
		Cookies:        middleware.CookieConfig{MaxAge: time.Hour},
		HealthChecks:   s.app.HealthChecks,
	}))
	s.tokenFile = filepath.Join(s.T().TempDir(), "token")

	s.T().Setenv("GAMEHUB_SERVER", s.server.URL)
	s.T().Setenv("GAMEHUB_TOKEN", "")
	s.T().Setenv("GAMEHUB_TOKEN_FILE", s.tokenFile)

	_, err := s.app.CreateUser(context.Background(), "alice", "secret1")
	s.Require().NoError(err)
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestLoginStoresToken() {
	out, err := s.run("login", "--user", "alice", "--pass", "secret1")
	s.Require().NoError(err)
	s.Contains(out, "Login successful")

	data, err := os.ReadFile(s.tokenFile)
	s.Require().NoError(err)
	s.NotEmpty(data)
}

func (s *CLISuite) TestLoginWrongPassword() {
	_, err := s.run("login", "--user", "alice", "--pass", "nope-nope")
	s.Require().Error(err)
	s.Contains(err.Error(), "Invalid username or password")

	_, statErr := os.Stat(s.tokenFile)
	s.True(os.IsNotExist(statErr))
}

func (s *CLISuite) TestHistoryAndSummary() {
	users, err := s.app.Storage.GetUserByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	_, err = s.app.RecordPlay(context.Background(), users.ID, "Camp Escape", 90, s.app.MockClock.Now())
	s.Require().NoError(err)

	_, err = s.run("login", "--user", "alice", "--pass", "secret1")
	s.Require().NoError(err)

	out, err := s.run("history")
	s.Require().NoError(err)
	s.Contains(out, "Camp Escape")
	s.Contains(out, "1.5")

	out, err = s.run("summary", "-o", "json")
	s.Require().NoError(err)
	var summary Summary
	s.Require().NoError(json.Unmarshal([]byte(out), &summary))
	s.Equal("alice", summary.DisplayName)
	s.Len(summary.RecentGames, 1)
	s.Contains(summary.Roles, "killer")
}

func (s *CLISuite) TestHistoryWithoutSession() {
	_, err := s.run("history")
	s.Require().Error(err)

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusUnauthorized, apiErr.Status)
}

func (s *CLISuite) TestLogoutClearsToken() {
	_, err := s.run("login", "--user", "alice", "--pass", "secret1")
	s.Require().NoError(err)

	out, err := s.run("logout")
	s.Require().NoError(err)
	s.Contains(out, "Logout successful")

	_, statErr := os.Stat(s.tokenFile)
	s.True(os.IsNotExist(statErr))

	_, err = s.run("me")
	s.Error(err)
}

func (s *CLISuite) TestLogoutAllEndsOtherSessions() {
	_, err := s.run("login", "--user", "alice", "--pass", "secret1")
	s.Require().NoError(err)
	elsewhere, err := s.app.AuthService.Login(context.Background(), "alice", "secret1")
	s.Require().NoError(err)

	out, err := s.run("logout", "--all")
	s.Require().NoError(err)
	s.Contains(out, "Logged out of all sessions")

	_, err = s.app.AuthService.ValidateSession(context.Background(), elsewhere.Session.Token)
	s.Error(err)
	_, statErr := os.Stat(s.tokenFile)
	s.True(os.IsNotExist(statErr))
}

func (s *CLISuite) TestGamesAndHealth() {
	out, err := s.run("games")
	s.Require().NoError(err)
	s.Contains(out, "No games in the catalog")

	out, err = s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
}
