// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/money-tracker/backend/config"
	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/application/usecase/advisor"
	"github.com/money-tracker/backend/internal/application/usecase/analytics"
	"github.com/money-tracker/backend/internal/application/usecase/auth"
	"github.com/money-tracker/backend/internal/application/usecase/record"
	"github.com/money-tracker/backend/internal/application/usecase/settings"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/infra/cache"
	"github.com/money-tracker/backend/internal/infra/db"
	"github.com/money-tracker/backend/internal/infra/server/router"
	"github.com/money-tracker/backend/internal/integration/adapters"
	"github.com/money-tracker/backend/internal/integration/email"
	"github.com/money-tracker/backend/internal/integration/email/templates"
	"github.com/money-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/money-tracker/backend/internal/integration/entrypoint/middleware"
	"github.com/money-tracker/backend/internal/integration/persistence"
	"github.com/money-tracker/backend/internal/integration/realtime"
)

// Options overrides collaborators that talk to the outside world. Zero values select the
// production implementation chosen from the configuration.
type Options struct {
	// Redis carries change notifications and verified sessions. Nil keeps both in-process.
	Redis *redis.Client
	// EmailSender defaults to Resend, or to a RecordingSender without an API key.
	EmailSender adapter.EmailSender
	// LanguageModel defaults to Gemini.
	LanguageModel adapter.LanguageModel
	// PasswordService defaults to bcrypt at cost 12.
	PasswordService adapter.PasswordService
	// Clock defaults to time.Now.
	Clock adapter.Clock
}

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	Database    *db.Database
	Router      *router.Router
	EmailWorker *email.Worker
	Notifier    adapter.ChangeNotifier
	Limiters    []*middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, database *db.Database, opts Options) (*Injector, error) {
	gormDB := database.DB()

	// Repositories
	userRepo := persistence.NewUserRepository(gormDB)
	tokenRepo := persistence.NewTokenRepository(gormDB)
	recordRepo := persistence.NewRecordRepository(gormDB)
	settingsRepo := persistence.NewSettingsRepository(gormDB)
	emailQueueRepo := persistence.NewEmailQueueRepository(gormDB)

	// Services
	passwordService := opts.PasswordService
	if passwordService == nil {
		passwordService = adapters.NewPasswordService()
	}
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, adapters.TokenDurations{
		Access:  cfg.JWT.AccessTokenExpiry,
		Refresh: cfg.JWT.RefreshTokenExpiry,
	}, tokenRepo)
	verificationTokenService := adapters.NewVerificationTokenService(tokenRepo, cfg.Auth.VerificationTokenTTL)

	var (
		notifier adapter.ChangeNotifier
		sessions adapter.VerifiedSessionStore
	)
	if opts.Redis != nil {
		notifier = realtime.NewRedisNotifier(opts.Redis, cfg.Realtime.ChannelPrefix)
		sessions = adapters.NewRedisVerifiedSessionStore(opts.Redis, cfg.Auth.VerifiedSessionTTL)
	} else {
		notifier = realtime.NewMemoryNotifier()
		sessions = adapters.NewMemoryVerifiedSessionStore(cfg.Auth.VerifiedSessionTTL)
	}

	sender, err := emailSender(cfg, opts.EmailSender)
	if err != nil {
		return nil, err
	}
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	emailService := email.NewService(emailQueueRepo, opts.Clock)
	emailWorker := email.NewWorker(emailQueueRepo, sender, renderer, email.WorkerConfig{
		PollInterval: cfg.Email.PollInterval,
		BatchSize:    cfg.Email.BatchSize,
		Retention:    email.DefaultWorkerConfig().Retention,
		Clock:        opts.Clock,
	})

	languageModel := opts.LanguageModel
	if languageModel == nil {
		languageModel = adapters.NewGeminiLanguageModel(adapters.GeminiConfig{
			APIKey:          cfg.AI.GeminiAPIKey,
			Model:           cfg.AI.Model,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
			RequestTimeout:  cfg.AI.RequestTimeout,
		})
	}

	snapshotLoader := realtime.NewSnapshotLoader(recordRepo, opts.Clock)
	feed := realtime.NewFeed(snapshotLoader, notifier)

	// Auth use cases
	registerUseCase := auth.NewRegisterUserUseCase(userRepo, passwordService, tokenService, verificationTokenService, emailService, cfg.Email.AppBaseURL)
	loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService, sessions)
	refreshTokenUseCase := auth.NewRefreshTokenUseCase(tokenService, userRepo, sessions)
	logoutUseCase := auth.NewLogoutUserUseCase(tokenService, sessions)
	verifyEmailUseCase := auth.NewVerifyEmailUseCase(userRepo, verificationTokenService, sessions)
	resendVerificationUseCase := auth.NewResendVerificationUseCase(userRepo, verificationTokenService, emailService, cfg.Email.AppBaseURL)
	changePasswordUseCase := auth.NewChangePasswordUseCase(userRepo, passwordService, tokenService, sessions)
	updateEmailUseCase := auth.NewUpdateEmailUseCase(userRepo, passwordService, verificationTokenService, emailService, cfg.Email.AppBaseURL)

	// Record use cases
	budgetAlerts := record.NewBudgetAlertNotifier(settingsRepo, snapshotLoader, userRepo, emailService, opts.Clock)
	createRecordUseCase := record.NewCreateRecordUseCase(recordRepo, notifier, budgetAlerts, opts.Clock)
	listRecordsUseCase := record.NewListRecordsUseCase(recordRepo)

	// Analytics use cases
	getAnalyticsUseCase := analytics.NewGetAnalyticsUseCase(settingsRepo, snapshotLoader, opts.Clock)
	getSummaryStatsUseCase := analytics.NewGetSummaryStatsUseCase(settingsRepo, snapshotLoader, opts.Clock)
	watchAnalyticsUseCase := analytics.NewWatchAnalyticsUseCase(settingsRepo, feed, opts.Clock)

	// Settings use cases
	getSettingsUseCase := settings.NewGetSettingsUseCase(settingsRepo)
	updateSettingsUseCase := settings.NewUpdateSettingsUseCase(settingsRepo, opts.Clock)
	listHistoryUseCase := settings.NewListHistoryUseCase(settingsRepo)

	askQuestionUseCase := advisor.NewAskQuestionUseCase(languageModel, cfg.AI.MaxRetries, cfg.AI.RetryWait)

	// Middleware
	limitsDisabled := cfg.IsTestEnvironment()
	loginRateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		MaxAttempts: cfg.Limits.LoginAttempts,
		Window:      cfg.Limits.Window,
		Code:        string(domainerror.ErrCodeRateLimited),
		Disabled:    limitsDisabled,
	})
	advisorRateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		MaxAttempts: cfg.Limits.AdvisorRequests,
		Window:      cfg.Limits.Window,
		Code:        string(domainerror.ErrCodeAdvisorRateLimited),
		Disabled:    limitsDisabled,
	})
	authMiddleware := middleware.NewAuthMiddleware(tokenService, sessions, userRepo, cfg.Auth.RequireVerifiedEmail)

	controllers := router.Controllers{
		Health: controller.NewHealthController(database.HealthCheck, cache.HealthCheck(opts.Redis)),
		Auth: controller.NewAuthController(
			registerUseCase,
			loginUseCase,
			refreshTokenUseCase,
			logoutUseCase,
			verifyEmailUseCase,
			resendVerificationUseCase,
		),
		User:   controller.NewUserController(changePasswordUseCase, updateEmailUseCase),
		Record: controller.NewRecordController(createRecordUseCase, listRecordsUseCase),
		Analytics: controller.NewAnalyticsController(
			getAnalyticsUseCase,
			getSummaryStatsUseCase,
			watchAnalyticsUseCase,
			controller.LiveStreamConfig{
				WriteTimeout:   cfg.Realtime.WriteTimeout,
				PingInterval:   cfg.Realtime.PingInterval,
				AllowedOrigins: splitList(cfg.Realtime.AllowedOrigins),
			},
		),
		Settings: controller.NewSettingsController(getSettingsUseCase, updateSettingsUseCase, listHistoryUseCase),
		Advisor:  controller.NewAdvisorController(askQuestionUseCase),
	}

	r := router.NewRouter(controllers, router.Middlewares{
		Auth:               authMiddleware,
		LoginRateLimiter:   loginRateLimiter,
		AdvisorRateLimiter: advisorRateLimiter,
	})

	return &Injector{
		Config:      cfg,
		Database:    database,
		Router:      r,
		EmailWorker: emailWorker,
		Notifier:    notifier,
		Limiters:    []*middleware.RateLimiter{loginRateLimiter, advisorRateLimiter},
	}, nil
}

func emailSender(cfg *config.Config, override adapter.EmailSender) (adapter.EmailSender, error) {
	if override != nil {
		return override, nil
	}
	if cfg.Email.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY is not set, emails are recorded instead of sent")
		return email.NewRecordingSender(), nil
	}
	client, err := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail, cfg.Email.ResendBaseURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
