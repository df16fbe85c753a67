// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/money-tracker/backend/config"
	"github.com/money-tracker/backend/internal/infra/db"
	"github.com/money-tracker/backend/internal/infra/dependency"
	"github.com/money-tracker/backend/internal/integration/adapters"
	"github.com/money-tracker/backend/internal/integration/email"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
	"github.com/money-tracker/backend/test/integration/mock"
)

const (
	testJWTSecret   = "test-jwt-secret-key-for-testing-purposes"
	fixturePassword = "SecurePass123!"
	resendEmailPath = "/emails"

	verifiedSessionKey = "session:verified:"
)

type testContext struct {
	uri               string
	headers           map[string]string
	client            *http.Client
	response          *response
	accessToken       string
	refreshToken      string
	verificationToken string
	currentUserID     uuid.UUID
	lastRecordID      uuid.UUID
	stream            *websocket.Conn
}

type response struct {
	status int
	body   any
}

// harness is the single server shared by every scenario along with the fakes behind it.
type harness struct {
	uri         string
	db          *mock.Db
	redis       *mock.Redis
	sessionTTL  time.Duration
	emailAPI    *mock.ApiMock
	clock       *mock.Time
	advisor     *advisorModel
	emailWorker *email.Worker
}

var (
	serverInit sync.Once
	serverErr  error
	env        *harness
)

// InitializeTestSuite configures logging and gin once per suite. The server itself is
// started lazily by the first scenario and shared by all suites.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		_ = os.Setenv("ENV", "test")
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	})
}

// Shutdown stops the fakes shared by every suite. Call it once after the last suite ran.
func Shutdown() {
	if env == nil {
		return
	}
	env.emailAPI.Close()
	env.redis.Close()
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		if err := startServer(); err != nil {
			return ctx, err
		}
		return ctx, test.before()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		test.closeStream()
		return ctx, nil
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^the current time is "([^"]*)"$`, test.theCurrentTimeIs)

	registerFixtureSteps(ctx, test)
	registerAPISteps(ctx, test)
	registerStreamSteps(ctx, test)
}

func startServer() error {
	serverInit.Do(func() {
		h := &harness{
			db:       mock.NewDb("money_tracker", tables()),
			redis:    mock.NewRedis(),
			emailAPI: mock.NewApiServer(),
			clock:    mock.NewTime(),
			advisor:  &advisorModel{},
		}
		h.emailAPI.Start()

		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.JWT.Secret = testJWTSecret
		cfg.Auth.RequireVerifiedEmail = true
		cfg.Email.AppBaseURL = "http://money-tracker.test"
		cfg.AI.MaxRetries = 1
		cfg.AI.RetryWait = 10 * time.Millisecond

		sender, err := email.NewResendClient("re_test_key", cfg.Email.FromName, cfg.Email.FromEmail, h.emailAPI.GetUrl())
		if err != nil {
			serverErr = err
			return
		}

		injector, err := dependency.NewInjector(cfg, db.NewDatabase(h.db.DbConn), dependency.Options{
			Redis:           h.redis.Client,
			EmailSender:     sender,
			LanguageModel:   h.advisor,
			PasswordService: adapters.NewPasswordServiceWithCost(bcrypt.MinCost),
			Clock:           h.clock.Now,
		})
		if err != nil {
			serverErr = fmt.Errorf("failed to build injector: %w", err)
			return
		}
		h.emailWorker = injector.EmailWorker
		h.sessionTTL = cfg.Auth.VerifiedSessionTTL

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			serverErr = err
			return
		}
		h.uri = "http://" + listener.Addr().String()

		server := &http.Server{
			Handler:           injector.Router.Setup(cfg.Server.Environment),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Integration server stopped", "error", err)
			}
		}()

		env = h
	})
	return serverErr
}

func tables() map[string]any {
	return map[string]any{
		"users":                     &model.UserModel{},
		"refresh_tokens":            &model.RefreshTokenModel{},
		"email_verification_tokens": &model.EmailVerificationTokenModel{},
		"records":                   &model.RecordModel{},
		"budget_settings":           &model.BudgetSettingsModel{},
		"settings_history":          &model.SettingsHistoryModel{},
		"email_queue":               &model.EmailQueueModel{},
	}
}

func (t *testContext) before() error {
	t.uri = env.uri
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.refreshToken = ""
	t.verificationToken = ""
	t.currentUserID = uuid.Nil
	t.lastRecordID = uuid.Nil
	t.closeStream()

	env.clock.Reset()
	env.advisor.reset()
	env.emailAPI.ClearResponses("POST", resendEmailPath)
	env.emailAPI.SetResponse(-1, "POST", resendEmailPath, http.StatusOK, map[string]any{"id": "re_" + uuid.NewString()})

	env.redis.Clear()
	return env.db.ClearDB()
}

func (t *testContext) theAPIServerIsRunning() error {
	resp, err := t.client.Get(t.uri + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) theCurrentTimeIs(value string) error {
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", value, err)
	}
	env.clock.SetCurrentTime(at)
	return nil
}
