package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/generation"
	"nutricoach-backend/internal/history"
	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/llm/openai"
	"nutricoach-backend/internal/profile"
	"nutricoach-backend/internal/services/health"
	"nutricoach-backend/internal/shared/config"
	"nutricoach-backend/internal/shared/server"
	"nutricoach-backend/internal/shared/storage/cache"
	"nutricoach-backend/internal/shared/storage/db"
	"nutricoach-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Cache       cache.Cache
	Primary     llm.Client
	Fallback    llm.Client
	Pipeline    *generation.Pipeline
	HistoryRepo history.Repo
	Recorder    *history.Recorder

	GenerationHandler *generation.Handler
	ProfileHandler    *profile.Handler
	HistoryHandler    *history.Handler
	HealthHandler     *health.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Cache:    store,
		Primary:  buildClient(primaryEndpoint(cfg), true),
		Fallback: buildClient(fallbackEndpoint(cfg), false),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     app.Config,
		Generation: app.GenerationHandler,
		Profile:    app.ProfileHandler,
		History:    app.HistoryHandler,
		Health:     app.HealthHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.database_disabled", map[string]any{"env": cfg.Env})
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
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"err": err})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildCache(cfg config.Config) (cache.Cache, error) {
	if cfg.CacheTTL <= 0 {
		return nil, nil
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.NewMemory(), nil
	}
	rc, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"err": err})
			return cache.NewMemory(), nil
		}
		return nil, err
	}
	return rc, nil
}

func primaryEndpoint(cfg config.Config) llm.Endpoint {
	temp := cfg.PrimaryLLMTemperature
	return llm.Endpoint{
		Name:        "primary",
		URL:         cfg.PrimaryLLMURL,
		APIKey:      cfg.PrimaryLLMAPIKey,
		Model:       cfg.PrimaryLLMModel,
		Temperature: &temp,
		Timeout:     cfg.LLMTimeout,
	}
}

func fallbackEndpoint(cfg config.Config) llm.Endpoint {
	temp := cfg.FallbackLLMTemperature
	return llm.Endpoint{
		Name:        "fallback",
		URL:         cfg.FallbackLLMURL,
		APIKey:      cfg.FallbackLLMAPIKey,
		Model:       cfg.FallbackLLMModel,
		Temperature: &temp,
		MaxTokens:   cfg.FallbackLLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	}
}

// buildClient never fails: an endpoint that cannot be called becomes an
// Unconfigured client and the pipeline degrades past it.
func buildClient(endpoint llm.Endpoint, requireKey bool) llm.Client {
	missingKey := requireKey && strings.TrimSpace(endpoint.APIKey) == ""
	if !endpoint.Configured() || missingKey {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{
			"endpoint":    endpoint.Name,
			"missing_key": missingKey,
		})
		return llm.Unconfigured{Name: endpoint.Name}
	}
	client, err := openai.NewClient(endpoint)
	if err != nil {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"endpoint": endpoint.Name, "err": err})
		return llm.Unconfigured{Name: endpoint.Name}
	}
	telemetry.Info("bootstrap.llm_ready", map[string]any{"endpoint": endpoint.Name, "model": endpoint.Model})
	return client
}

func buildServices(app *App) {
	opts := []generation.Option{generation.WithLightModel(app.Config.PrimaryLLMLightModel)}
	if app.Cache != nil {
		opts = append(opts, generation.WithCache(app.Cache, app.Config.CacheTTL))
	}
	app.Pipeline = generation.NewPipeline(app.Primary, app.Fallback, opts...)

	if app.DB != nil {
		app.HistoryRepo = &history.PGRepo{DB: app.DB}
	} else {
		app.HistoryRepo = history.NewMemoryRepo()
	}
	app.Recorder = history.NewRecorder(app.HistoryRepo)

	var dbPing, cachePing health.Pinger
	if app.DB != nil {
		dbPing = app.DB
	}
	if app.Cache != nil {
		cachePing = health.PingFunc(app.Cache.Ping)
	}

	app.GenerationHandler = generation.NewHandler(app.Pipeline, app.Recorder)
	app.ProfileHandler = profile.NewHandler()
	app.HistoryHandler = history.NewHandler(app.HistoryRepo)
	app.HealthHandler = health.NewHandler(health.NewService(dbPing, cachePing))
}
