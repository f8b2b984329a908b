package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalyze-client/internal/bootstrap"
	"evalyze-client/internal/config"
	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/internal/stub"
	"evalyze-client/pkg/api"
	"evalyze-client/pkg/chat"
	"evalyze-client/pkg/tokenstore"
)

// fiberTransport routes client requests straight into the stub's fiber app
// in-process, so the whole stack is exercised without a listening socket.
type fiberTransport struct {
	app *fiber.App
}

func (t *fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, 10000)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Environment: "test",
			LogFilePath: filepath.Join(dir, "evalyze-test.log"),
		},
		API: config.APIConfig{
			BaseURL: "http://evalyze.test/api",
			Timeout: 10 * time.Second,
		},
		Chat: config.ChatConfig{
			PollInterval: 50 * time.Millisecond,
		},
		Credentials: config.CredentialsConfig{
			FilePath:   filepath.Join(dir, "credentials.json"),
			SessionTTL: time.Hour,
		},
		Stub: config.StubConfig{
			Port:       "0",
			JWTSecret:  "integration_secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
		},
	}
}

func newStack(t *testing.T) (*bootstrap.Container, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	backend := stub.New(cfg.Stub, logger.Nop())
	container := bootstrap.NewContainerWithTransport(cfg, &fiberTransport{app: backend.App()})
	t.Cleanup(container.Close)
	return container, cfg
}

func login(t *testing.T, c *bootstrap.Container, email, password string, role model.Role) *model.User {
	t.Helper()
	user, err := c.Auth.Login(context.Background(), &dto.LoginRequest{
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestCandidateInterviewJourney(t *testing.T) {
	c, _ := newStack(t)
	ctx := context.Background()

	user := login(t, c, "candidate@evalyze.dev", "candidate123", model.RoleCandidate)
	assert.Equal(t, model.RoleCandidate, user.Role)
	assert.True(t, c.Tokens.IsAuthenticated())

	// No interview yet.
	active, err := c.Interviews.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	vacancies, err := c.Vacancies.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, vacancies)

	applied, err := c.Vacancies.Apply(ctx, vacancies[0].ID)
	require.NoError(t, err)
	require.NotZero(t, applied.SessionID)

	// Applying twice conflicts; the active session is how the client resumes.
	_, err = c.Vacancies.Apply(ctx, vacancies[0].ID)
	require.Error(t, err)
	active, err = c.Interviews.GetActiveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, applied.SessionID, active.ID)
	assert.Equal(t, model.SessionPending, active.Status)

	// Chat through the whole interview.
	ctrl := c.Chat
	require.NoError(t, ctrl.Bind(ctx, applied.SessionID))
	require.Equal(t, chat.StateReadyPending, ctrl.State())

	require.NoError(t, ctrl.StartInterview(ctx))
	require.Equal(t, chat.StateAwaitingInput, ctrl.State())
	require.NotEmpty(t, ctrl.Messages(), "greeting must arrive with the start")
	total := ctrl.TotalQuestions()

	answers := []string{
		"I led the rewrite of our billing pipeline. I owned the data model and the rollout.",
		"I reproduce it, read the logs, and bisect the change history until the cause is obvious.",
		"We disagreed on an API design. We prototyped both and let the benchmarks decide.",
	}
	for i, answer := range answers {
		require.NoError(t, ctrl.SendMessage(ctx, answer), "answer %d", i+1)
	}
	assert.Equal(t, chat.StateCompleted, ctrl.State())
	assert.Equal(t, 3, ctrl.QuestionIndex())
	if total > 0 {
		assert.Equal(t, total, ctrl.QuestionIndex())
	}

	// Transcript alternates interviewer and candidate, ending with the wrap-up.
	messages := ctrl.Messages()
	require.GreaterOrEqual(t, len(messages), 7)
	assert.Equal(t, model.SenderCandidate, messages[1].Sender)

	report, err := c.Analysis.GetReport(ctx, applied.SessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, report.CandidateID)
	assert.NotEmpty(t, report.ScoreCategory)
	assert.Greater(t, report.QuantitativeScore, 0.0)
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	c, _ := newStack(t)
	ctx := context.Background()

	login(t, c, "candidate@evalyze.dev", "candidate123", model.RoleCandidate)

	// Sabotage the access token but keep the valid refresh token. The next
	// request must 401, refresh once, and succeed on the retry without the
	// caller noticing.
	refresh := c.Tokens.Refresh()
	require.NotEmpty(t, refresh)
	c.Tokens.SetTokens(model.TokenPair{Access: "garbage", Refresh: refresh})

	session, err := c.Interviews.GetActiveSession(ctx)
	require.NoError(t, err, "the 401 must be recovered transparently")
	assert.Nil(t, session)

	assert.NotEqual(t, "garbage", c.Tokens.Access(), "store must hold the refreshed access token")
	assert.NotEqual(t, refresh, c.Tokens.Refresh(), "stub rotates the refresh token")
	assert.True(t, c.Tokens.IsAuthenticated())
}

func TestInvalidRefreshTokenForcesLogout(t *testing.T) {
	c, _ := newStack(t)
	ctx := context.Background()

	login(t, c, "candidate@evalyze.dev", "candidate123", model.RoleCandidate)
	c.Tokens.SetTokens(model.TokenPair{Access: "garbage", Refresh: "also-garbage"})

	_, err := c.Interviews.GetActiveSession(ctx)
	require.Error(t, err, "failed refresh must surface an error")
	assert.False(t, c.Tokens.IsAuthenticated(), "failed refresh must terminate the session")
	assert.Nil(t, c.Tokens.User())
}

func TestLoginRoleMismatchIsAFieldError(t *testing.T) {
	c, _ := newStack(t)

	_, err := c.Auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "candidate@evalyze.dev",
		Password: "candidate123",
		Role:     model.RoleCompany,
	})
	require.Error(t, err)
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsValidation())
	assert.Contains(t, apiErr.FieldMessages("role"), "candidate")
	assert.False(t, c.Tokens.IsAuthenticated())
}

func TestRestoreSessionFromRememberedCredentials(t *testing.T) {
	cfg := testConfig(t)
	backend := stub.New(cfg.Stub, logger.Nop())
	transport := &fiberTransport{app: backend.App()}

	first := bootstrap.NewContainerWithTransport(cfg, transport)
	_, err := first.Auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "candidate@evalyze.dev",
		Password: "candidate123",
		Role:     model.RoleCandidate,
		Remember: true,
	})
	require.NoError(t, err)
	first.Close()

	// A fresh process against the same backend picks the session back up.
	second := bootstrap.NewContainerWithTransport(cfg, transport)
	defer second.Close()

	user, err := second.Auth.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "candidate@evalyze.dev", user.Email)
	assert.True(t, second.Tokens.IsAuthenticated())
}

func TestCompanyAnalyticsSurface(t *testing.T) {
	c, _ := newStack(t)
	ctx := context.Background()

	// Candidate completes an interview first.
	login(t, c, "candidate@evalyze.dev", "candidate123", model.RoleCandidate)
	vacancies, err := c.Vacancies.List(ctx)
	require.NoError(t, err)
	applied, err := c.Vacancies.Apply(ctx, vacancies[0].ID)
	require.NoError(t, err)
	require.NoError(t, c.Chat.Bind(ctx, applied.SessionID))
	require.NoError(t, c.Chat.StartInterview(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Chat.SendMessage(ctx, "A considered answer. With detail and a conclusion."))
	}
	require.Equal(t, chat.StateCompleted, c.Chat.State())
	c.Auth.Logout()

	// Company reviews the outcome.
	login(t, c, "company@evalyze.dev", "company123", model.RoleCompany)

	candidates, err := c.Analysis.GetCandidates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	require.NotNil(t, candidates[0].Interview)
	assert.True(t, candidates[0].Interview.HasAnalysis)

	ranking, err := c.Analysis.GetRanking(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ranking.TotalCandidates)
	assert.Equal(t, 1, ranking.Ranking[0].Rank)

	global, err := c.Analysis.GetGlobalReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, global.Summary.TotalInterviews)
	assert.Greater(t, global.Summary.AverageScore, 0.0)
}

func TestTokenStoreObserversSeeLoginAndLogout(t *testing.T) {
	c, _ := newStack(t)

	snapshots := make(chan tokenstore.Snapshot, 8)
	ch, cancel := c.Tokens.Subscribe()
	defer cancel()
	go func() {
		for snap := range ch {
			snapshots <- snap
		}
	}()

	login(t, c, "candidate@evalyze.dev", "candidate123", model.RoleCandidate)

	require.Eventually(t, func() bool {
		select {
		case snap := <-snapshots:
			return snap.User != nil && snap.User.Email == "candidate@evalyze.dev"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	c.Auth.Logout()
	require.Eventually(t, func() bool {
		select {
		case snap := <-snapshots:
			return snap.Access == "" && snap.User == nil
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
