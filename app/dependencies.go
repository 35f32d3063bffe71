package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/creatorhub/auth"
	"github.com/upb/creatorhub/config"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/handlers"
	"github.com/upb/creatorhub/internal/observability"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/repositories/postgres"
	"github.com/upb/creatorhub/services/accounts"
	"github.com/upb/creatorhub/services/content"
	"github.com/upb/creatorhub/services/creators"
	"github.com/upb/creatorhub/services/identity"
	"github.com/upb/creatorhub/services/subscriptions"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *sql.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory, nil when repositories are supplied by the caller
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Ghost
	Ghost   *ghost.Client
	Retrier *ghost.Retrier

	// Services
	Resolver      *identity.Resolver
	Accounts      *accounts.AccountService
	Creators      *creators.CreatorService
	Subscriptions *subscriptions.SubscriptionService
	Authors       *content.AuthorService
	Posts         *content.PostService

	// Auth
	Tokens      *auth.TokenCodec
	Sessions    *auth.SessionStore
	Guard       *middleware.Guard
	authHandler *auth.Handler

	// Handlers
	Health              *handlers.HealthHandler
	CreatorHandler      *handlers.CreatorHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	PostHandler         *handlers.PostHandler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies on top
// of PostgreSQL.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := factory.GetDB()
	if err := db.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps, err := NewDependenciesWithRepositories(cfg, db.DB, factory.NewRepositories(), factory.GetTransactionManager(), logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	deps.RepoFactory = factory
	return deps, nil
}

// NewDependenciesWithRepositories wires services, auth and handlers over the
// given repositories. db may be nil, in which case readiness skips the
// database check.
func NewDependenciesWithRepositories(cfg *config.Config, db *sql.DB, repos *repositories.Repositories, txMgr repositories.TransactionManager, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Repos:     repos,
		TxManager: txMgr,
	}

	if cfg.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = observability.NewMetrics(registry)
	}

	deps.initGhost(cfg)
	deps.initServices()
	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initGhost(cfg *config.Config) {
	d.Ghost = ghost.NewClient(cfg.Ghost)
	d.Retrier = ghost.NewRetrier(cfg.Ghost.MaxAttempts, cfg.Ghost.RetryBaseDelay, d.Logger)
	if d.Metrics != nil {
		d.Retrier.WithObserver(d.Metrics)
	}
	d.Logger.Info("ghost client initialized", zap.String("url", cfg.Ghost.URL))
}

func (d *Dependencies) initServices() {
	d.Resolver = identity.NewResolver(d.Repos, d.Logger)
	d.Accounts = accounts.NewAccountService(d.Repos.Users, d.Ghost, d.Resolver, d.Logger)
	d.Authors = content.NewAuthorService(d.Repos, d.Ghost, d.Retrier, d.Logger)
	d.Posts = content.NewPostService(d.Repos, d.Ghost, d.Retrier, d.Logger)
	d.Creators = creators.NewCreatorService(d.Repos, d.TxManager, d.Authors, d.Logger)
	d.Subscriptions = subscriptions.NewSubscriptionService(d.Repos, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	tokens, err := auth.NewTokenCodec(cfg.Session)
	if err != nil {
		return err
	}
	d.Tokens = tokens
	d.Sessions = auth.NewSessionStore(tokens, cfg.Session)
	d.authHandler = auth.NewHandler(d.Accounts, tokens, d.Sessions, d.Logger)

	d.Guard = middleware.NewGuard(d.Sessions, d.Resolver, d.Logger)
	if d.Metrics != nil {
		d.Guard.WithObserver(d.Metrics)
	}
	d.Logger.Info("auth initialized", zap.String("cookie", d.Sessions.CookieName()))
	return nil
}

func (d *Dependencies) initHandlers() {
	d.Health = handlers.NewHealthHandler(d.DB, d.Logger)
	d.CreatorHandler = handlers.NewCreatorHandler(d.Creators, d.Authors, d.Logger)
	d.SubscriptionHandler = handlers.NewSubscriptionHandler(d.Subscriptions, d.Logger)
	d.PostHandler = handlers.NewPostHandler(d.Posts, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
