package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/assist"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/billing"
	"resume-builder/internal/editor"
	"resume-builder/internal/entitlements"
	"resume-builder/internal/llm"
	anthropicllm "resume-builder/internal/llm/anthropic"
	geminillm "resume-builder/internal/llm/gemini"
	openaillm "resume-builder/internal/llm/openai"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/subscriptions"
	"resume-builder/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Tokens *sharedauth.Tokens
	LLM    llm.Completer

	UsersRepo         users.Repo
	ResumesRepo       resumes.Repo
	SubscriptionsRepo subscriptions.Repo

	UsersService        *users.Service
	EntitlementsService *entitlements.Service
	ResumesService      *resumes.Service
	AssistService       *assist.Service
	BillingService      *billing.Service
	BillingMirror       *billing.Mirror
	Editor              *editor.Manager
}

// Build prepares dependencies and wires routes. Dev-like environments without
// DATABASE_URL run on in-memory repositories.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := sharedauth.NewTokens(cfg.JWTSecret, cfg.JWTExpiration, cfg.Env == "production")
	if err != nil {
		return nil, err
	}

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Tokens: tokens,
		LLM:    completer,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	if cfg.LLMProvider != "none" && strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider, "reason": "missing api key"})
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("LLM_PROVIDER=%s requires an API key", cfg.LLMProvider)
	}
	switch cfg.LLMProvider {
	case "openai":
		return openaillm.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
	case "gemini":
		return geminillm.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	case "anthropic":
		return anthropicllm.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildBillingProvider(cfg config.Config) (billing.Provider, error) {
	if strings.TrimSpace(cfg.Billing.SecretKey) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY is required in production")
		}
		telemetry.Warn("bootstrap.billing.disabled", map[string]any{"reason": "STRIPE_SECRET_KEY empty"})
		return nil, nil
	}
	return billing.NewStripeProvider(cfg.Billing.SecretKey)
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.SubscriptionsRepo = &subscriptions.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.SubscriptionsRepo = subscriptions.NewMemoryRepo()
	}

	cfg := app.Config
	plans := entitlements.NewPlanTable(cfg.Billing.PricePremium, cfg.Billing.PricePremiumPlus)

	app.UsersService = users.NewService(app.UsersRepo)
	app.EntitlementsService = entitlements.NewService(app.SubscriptionsRepo, plans)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.Store, app.EntitlementsService)
	app.AssistService = assist.NewService(app.LLM, app.EntitlementsService, assist.DefaultBreakerSettings())
	editorOpts := []editor.Option{
		editor.WithIdleTimeout(cfg.EditorIdleTimeout),
		editor.WithMaxSessionsPerUser(cfg.EditorMaxSessions),
	}
	if db.IsLambdaRuntime() {
		// the sandbox freezes after each response, so a debounced save may never run
		editorOpts = append(editorOpts, editor.WithWriteThrough())
	}
	app.Editor = editor.NewManager(app.ResumesService, cfg.AutosaveDelay, editorOpts...)

	provider, err := buildBillingProvider(cfg)
	if err != nil {
		return err
	}
	app.BillingMirror = billing.NewMirror(app.SubscriptionsRepo, app.UsersService, provider)
	app.BillingService = billing.NewService(provider, app.UsersService, app.SubscriptionsRepo, plans, billing.URLs{
		Success:      cfg.Billing.SuccessURL,
		Cancel:       cfg.Billing.CancelURL,
		PortalReturn: cfg.Billing.PortalReturnURL,
	})

	googleAuth := googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.Tokens,
		app.UsersService,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: app.Tokens,
		Limiter:  middleware.NewRateLimiter(nil),
		Health:   health.NewService(pinger(app.DB)),
		Public: []server.RouteRegistrar{
			googleAuth,
			billing.NewWebhookHandler(app.BillingMirror, cfg.Billing.WebhookSecret),
		},
		Private: []server.RouteRegistrar{
			users.NewHandler(app.UsersService),
			entitlements.NewHandler(app.EntitlementsService, app.ResumesService),
			resumes.NewHandler(app.ResumesService),
			editor.NewHandler(app.Editor),
			assist.NewHandler(app.AssistService),
			billing.NewHandler(app.BillingService),
		},
	})
	return nil
}

// Shutdown flushes editor sessions and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.Editor != nil {
		err = a.Editor.Shutdown(ctx)
	}
	if closer, ok := a.LLM.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if a.DB != nil {
		if cerr := a.DB.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
