// Package app assembles vidfeed's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/auth"
	"github.com/prn-tf/vidfeed/internal/cache/memory"
	rediscache "github.com/prn-tf/vidfeed/internal/cache/redis"
	"github.com/prn-tf/vidfeed/internal/config"
	"github.com/prn-tf/vidfeed/internal/handler"
	"github.com/prn-tf/vidfeed/internal/lock"
	"github.com/prn-tf/vidfeed/internal/metrics"
	"github.com/prn-tf/vidfeed/internal/repository"
	"github.com/prn-tf/vidfeed/internal/repository/postgres"
	"github.com/prn-tf/vidfeed/internal/repository/sqlite"
	"github.com/prn-tf/vidfeed/internal/service"
	"github.com/prn-tf/vidfeed/internal/storage"
	"github.com/prn-tf/vidfeed/internal/storage/s3"
)

// App holds the assembled services and their resources.
type App struct {
	Config   *config.Config
	Database repository.Database
	Repos    *repository.Repositories
	Metrics  *metrics.Metrics

	Users    *service.UserService
	Timeline *service.TimelineService
	Videos   *service.VideoService
	Presign  *service.PresignService
	Tokens   *auth.TokenManager

	logger  zerolog.Logger
	closers []func() error
}

// OpenDatabase connects to the configured database and returns its repositories.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (repository.Database, *repository.Repositories, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			JournalMode:     cfg.JournalMode,
			BusyTimeout:     cfg.BusyTimeout,
			CacheSize:       cfg.CacheSize,
			SynchronousMode: cfg.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, &repository.Repositories{
			User: sqlite.NewUserRepository(db),
			Post: sqlite.NewPostRepository(db),
		}, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, &repository.Repositories{
			User: postgres.NewUserRepository(db.Pool),
			Post: postgres.NewPostRepository(db.Pool, db.Reader()),
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// StorageEndpoint resolves where uploads are addressed: the emulator in the
// local environment, the provider otherwise.
func StorageEndpoint(cfg *config.Config) storage.EndpointConfig {
	if cfg.IsLocalEnv() {
		return storage.LocalEndpoint(cfg.Storage.LocalEndpoint)
	}
	return storage.ProviderEndpoint(cfg.Storage.ProviderHost)
}

// New builds the application. Call Close to release its resources.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	db, repos, err := OpenDatabase(ctx, cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	a.Database = db
	a.Repos = repos
	a.closers = append(a.closers, db.Close)

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var (
		cache  repository.Cache
		locker lock.Locker
	)
	if cfg.Redis.Enabled {
		client, err := rediscache.NewClient(ctx, rediscache.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		cache = rediscache.NewCache(client, a.logger)
		locker = lock.NewRedisLocker(client)
		a.logger.Info().Str("addr", cfg.Redis.Addr()).Msg("using redis for cache and locks")
	} else {
		mem := memory.NewCache(memory.DefaultCleanupInterval)
		a.closers = append(a.closers, func() error { mem.Stop(); return nil })
		cache = mem
		locker = lock.NewMemoryLocker()
	}

	a.Tokens, err = auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	s3Config := s3.Config{
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	}
	if cfg.IsLocalEnv() {
		s3Config.Endpoint = cfg.Storage.LocalEndpoint
		s3Config.UsePathStyle = true
	} else if cfg.Storage.ProviderHost != "" {
		s3Config.Endpoint = cfg.Storage.ProviderHost
	}

	awsCfg, err := s3.LoadAWSConfig(ctx, s3Config)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	credentials := s3.NewCredentialsProvider(awsCfg.Credentials, s3.CredentialsConfig{
		Timeout:     cfg.Storage.CredentialsTimeout,
		MaxAttempts: cfg.Storage.CredentialsMaxAttempts,
	}, a.logger)

	endpoint := StorageEndpoint(cfg)
	a.Presign, err = service.NewPresignService(credentials, service.PresignConfig{
		Region:   cfg.Storage.Region,
		Window:   cfg.Storage.PresignWindow(),
		Endpoint: endpoint,
	}, a.Metrics, a.logger)
	if err != nil {
		return fmt.Errorf("presign: %w", err)
	}

	objects := s3.NewObjectStore(awsCfg, s3Config, a.logger)

	a.Users = service.NewUserService(repos.User, locker, a.Tokens, a.Metrics, a.logger)
	a.Timeline = service.NewTimelineService(repos.Post, cache, locker, service.TimelineConfig{
		PageSize: cfg.Timeline.PageSize,
		CacheTTL: cfg.Timeline.CacheTTL,
		Bucket:   cfg.Storage.VideosBucket,
		Endpoint: endpoint,
	}, a.Metrics, a.logger)
	a.Videos = service.NewVideoService(
		service.AllowAllEligibility{},
		a.Presign,
		objects,
		cfg.Storage.VideosBucket,
		a.Metrics,
		a.logger,
	)

	return nil
}

// Handler returns the API handler.
func (a *App) Handler() http.Handler {
	return handler.NewRouter(handler.RouterConfig{
		HealthHandler:   handler.NewHealthHandler(a.Database),
		UserHandler:     handler.NewUserHandler(a.Users, a.logger),
		TimelineHandler: handler.NewTimelineHandler(a.Timeline, a.logger),
		VideoHandler:    handler.NewVideoHandler(a.Videos, a.logger),
		Tokens:          a.Tokens,
		Metrics:         a.Metrics,
		MaxBodySize:     a.Config.Server.MaxBodySize,
		Logger:          a.logger,
	}).Handler()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
