package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"salesdash/internal/alerting"
	"salesdash/internal/config"
	"salesdash/internal/constants"
	"salesdash/internal/dashboard"
	"salesdash/internal/logger"
	"salesdash/internal/notify"
	"salesdash/internal/sales"
	"salesdash/internal/summary"
	"salesdash/pkg/bootstrap"
	"salesdash/pkg/cel"
	"salesdash/pkg/circuitbreaker"
	"salesdash/pkg/health"
	"salesdash/pkg/metrics"
	"salesdash/pkg/middleware"
	"salesdash/pkg/migrations"
	"salesdash/pkg/ratelimit"
	"salesdash/pkg/tracing"
)

type App struct {
	*bootstrap.Base

	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redis          *redis.Client
	mongoClient    *mongo.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider

	repo       sales.Repository
	summarizer *summary.BreakerSummarizer
	notifier   *notify.Notifier
	service    dashboard.Service
	health     *health.CheckerRegistry
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

// Initialize connects every configured backend and builds the HTTP server.
// ctx bounds background work such as the rate limiter sweep.
func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, a.Config.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.Register()

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}
	a.notifier = a.Notifier()

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	a.initHealth()
	a.initRouter(ctx)
	a.initServer()
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, constants.ConnectTimeout)
	defer cancel()

	db, err := a.dbConnector.InitPostgreSQL(initCtx)
	if err != nil {
		return err
	}
	a.db = db

	if a.db != nil && a.Config.Database.RunMigrations {
		if err := migrations.RunPostgres(a.db); err != nil {
			return err
		}
		a.Logger.InfowCtx(ctx, "PostgreSQL migrations applied")
	}

	mc, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		return err
	}
	a.mongoClient = mc

	if a.mongoClient != nil && a.Config.Database.RunMigrations {
		if err := migrations.EnsureSalesCollection(initCtx, a.mongoDatabase(), constants.DefaultSalesCollection); err != nil {
			return err
		}
	}

	// Redis only backs the summary cache, so the service runs without it.
	rdb, err := a.dbConnector.InitRedis(initCtx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis connection failed, continuing without summary cache", "error", err)
	}
	a.redis = rdb

	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	name := a.Config.Database.MongoDB.Database
	if name == "" {
		name = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(name)
}

// newRepository picks the record source named by data_source.type.
func (a *App) newRepository() (sales.Repository, error) {
	switch a.Config.DataSource.Type {
	case "", constants.DataSourceSample:
		return sales.NewSampleRepository(), nil
	case constants.DataSourceFile:
		return sales.NewFileRepository(a.Config.DataSource.Path), nil
	case constants.DataSourcePostgres:
		if a.db == nil {
			return nil, errors.New("data source postgres requires database.postgres")
		}
		return sales.NewPostgresRepository(a.db), nil
	case constants.DataSourceMongoDB:
		if a.mongoClient == nil {
			return nil, errors.New("data source mongodb requires database.mongodb")
		}
		return sales.NewMongoRepository(a.mongoDatabase()), nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", a.Config.DataSource.Type)
	}
}

func (a *App) newRuleStore() (*alerting.RuleStore, *alerting.Materializer, error) {
	registry := alerting.DefaultRegistry()

	rules := alerting.NewRuleStore(registry)
	drafts, err := dashboard.SeedDrafts(a.Config.Alerts.Rules)
	if err != nil {
		return nil, nil, err
	}
	if err := dashboard.SeedRules(rules, drafts); err != nil {
		return nil, nil, fmt.Errorf("invalid seed rule: %w", err)
	}

	var opts []alerting.MaterializerOption
	if len(a.Config.Alerts.SeverityRules) > 0 {
		evaluator, err := cel.NewEvaluator()
		if err != nil {
			return nil, nil, err
		}
		chain, err := alerting.CompileSeverityChain(evaluator, dashboard.SeverityExpressions(a.Config.Alerts.SeverityRules), a.Logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, alerting.WithSeverityChain(chain))
	}

	return rules, alerting.NewMaterializer(registry, opts...), nil
}

func (a *App) newSummaryService() *summary.Service {
	cfg := a.Config.Summary
	gemini := summary.NewGeminiClient(summary.GeminiConfig{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
	})

	var upstream summary.Summarizer = gemini
	if a.Config.CircuitBreaker.Enabled {
		cb := a.Config.CircuitBreaker
		a.summarizer = summary.NewBreakerSummarizer(gemini, circuitbreaker.Config{
			Name:         "summary",
			MaxRequests:  cb.MaxRequests,
			Interval:     cb.Interval,
			Timeout:      cb.Timeout,
			MinRequests:  cb.MinRequests,
			FailureRatio: cb.FailureRatio,
		})
		upstream = a.summarizer
	}

	var opts []summary.ServiceOption
	if cfg.Timeout > 0 {
		opts = append(opts, summary.WithTimeout(cfg.Timeout))
	}
	if a.redis != nil && cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		opts = append(opts, summary.WithCache(summary.NewRedisCache(a.redis), ttl))
	}
	if !gemini.HasKey() {
		a.Logger.Warnw("Summary API key not configured, summaries will report a missing key")
	}
	return summary.NewService(upstream, a.Logger, opts...)
}

func (a *App) initService(ctx context.Context) error {
	repo, err := a.newRepository()
	if err != nil {
		return err
	}
	a.repo = repo

	records, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sales from %s: %w", repo.Name(), err)
	}
	metrics.SetSalesRecordsLoaded(repo.Name(), len(records))
	a.Logger.InfowCtx(ctx, "Sales records loaded", "source", repo.Name(), "records", len(records))

	rules, materializer, err := a.newRuleStore()
	if err != nil {
		return err
	}

	a.service = dashboard.NewService(records, rules, a.Logger,
		dashboard.WithRepository(repo),
		dashboard.WithMaterializer(materializer),
		dashboard.WithSummarizer(a.newSummaryService()),
		dashboard.WithNotifier(a.notifier),
	)
	return nil
}

func (a *App) initHealth() {
	registry := health.NewCheckerRegistry()

	register := registry.RegisterOptional
	if a.Config.DataSource.Type == constants.DataSourcePostgres {
		register = registry.Register
	}
	if a.db != nil {
		register(health.NewPostgreSQLChecker(a.db))
	}

	register = registry.RegisterOptional
	if a.Config.DataSource.Type == constants.DataSourceMongoDB {
		register = registry.Register
	}
	if a.mongoClient != nil {
		register(health.NewMongoDBChecker(a.mongoClient))
	}

	if a.redis != nil {
		registry.RegisterOptional(health.NewRedisChecker(a.redis))
	}
	if a.summarizer != nil {
		breaker := a.summarizer
		registry.RegisterOptional(health.NewCheckFunc("summary_breaker", func(ctx context.Context) error {
			if state := breaker.State(); state == "open" {
				return fmt.Errorf("circuit breaker %s", state)
			}
			return nil
		}))
	}

	a.health = registry
}

func (a *App) initRouter(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if rl := a.Config.Management.RateLimit; rl.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: time.Duration(rl.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(rl.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(ctx, rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	dashboard.NewHandler(a.service, a.Logger).RegisterRoutes(router)

	router.GET("/health", health.Handler(a.health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds,
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	return a.Base.Shutdown(shutdownCtx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)...)
	})
}
