package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/user-auth-service/config"
	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/middleware"
	"github.com/upb/user-auth-service/repositories"
	"github.com/upb/user-auth-service/repositories/memory"
	"github.com/upb/user-auth-service/repositories/postgres"
	"github.com/upb/user-auth-service/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory, nil for the memory backend
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager
	Store     repositories.HealthChecker

	// Services
	AuthService *services.AuthService
	UserService *services.UserService

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	if err := deps.initRepositories(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initServices(cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("store_backend", cfg.StoreBackend))
	return deps, nil
}

// initRepositories opens the configured user store
func (d *Dependencies) initRepositories(ctx context.Context, cfg *config.Config) error {
	var repos *repositories.Repositories

	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		d.Logger.Warn("using in-memory user store, data is lost on restart")
		repos = memory.NewRepositories()

	default:
		factory, err := postgres.NewRepositoryFactory(ctx, cfg, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}
		d.RepoFactory = factory
		repos = factory.NewRepositories()
	}

	d.Users = repos.Users
	d.TxManager = repos.Transactions
	d.Store = repos.Health

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices builds the hasher, token codec, services and auth middleware
func (d *Dependencies) initServices(cfg *config.Config) error {
	hasher := auth.NewHasher(cfg.Auth.HashConcurrency, d.Metrics.ObserveHash)

	tokens, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret: cfg.Auth.TokenSecret,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	d.AuthService = services.NewAuthService(d.Users, hasher, tokens, d.Metrics, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.TxManager, d.AuthService, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.AuthService, d.UserService, d.Logger)

	d.Logger.Info("services initialized",
		zap.Duration("token_ttl", tokens.TTL()),
		zap.Int("hash_concurrency", cfg.Auth.HashConcurrency))
	return nil
}

// Close gracefully shuts down all dependencies. It is safe to call twice.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
