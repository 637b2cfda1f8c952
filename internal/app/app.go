package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/playforge/arcade-api/internal/config"
	"github.com/playforge/arcade-api/internal/infrastructure/repository/sqlite"
	"github.com/playforge/arcade-api/internal/infrastructure/telegram"
	"github.com/playforge/arcade-api/internal/interfaces/httpapi"
	idgen "github.com/playforge/arcade-api/internal/platform/id"
	"github.com/playforge/arcade-api/internal/platform/logging"
	"github.com/playforge/arcade-api/internal/platform/resilience"
	"github.com/playforge/arcade-api/internal/usecase"
)

// App owns the storage handle and the HTTP server. Construct with New, serve
// via Server, release with Close.
type App struct {
	Server *http.Server

	store  *sqlite.Store
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := sqlite.Open(sqlite.Options{
		Path:         cfg.DBPath,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		BusyTimeout:  cfg.DBBusyTimeout,
		ConnIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// A failed migration leaves the service running in degraded mode rather
	// than halting boot; storage errors surface as 500s until the schema is
	// repaired.
	if err := migrateWithRetry(ctx, cfg, logger); err != nil {
		logger.Error("migrations abandoned, serving in degraded mode",
			"attempts", cfg.MigrateAttempts,
			"error", err,
		)
	}

	userRepo := sqlite.NewUserRepository(store)
	seasonRepo := sqlite.NewSeasonRepository(store)
	scoreRepo := sqlite.NewScoreRepository(store)
	settingsRepo := sqlite.NewSettingsRepository(store)

	ids := idgen.NewRandomGenerator()

	userSvc := usecase.NewUserService(userRepo, seasonRepo, scoreRepo, store, ids, cfg.DefaultAvatar, logger)
	rankingSvc := usecase.NewRankingService(seasonRepo, scoreRepo, store, cfg.AvatarDir, cfg.DefaultAvatar)
	seasonSvc := usecase.NewSeasonService(seasonRepo, scoreRepo, userRepo, store, logger)
	settingsSvc := usecase.NewSettingsService(settingsRepo, ids, cfg.UploadDir)

	var notifier usecase.Notifier
	if cfg.TelegramEnabled {
		notifier = telegram.NewClient(telegram.ClientConfig{
			HTTPClient:       &http.Client{Timeout: cfg.TelegramTimeout},
			BaseURL:          cfg.TelegramAPIBaseURL,
			Token:            cfg.TelegramBotToken,
			Timeout:          cfg.TelegramTimeout,
			Logger:           logger,
			FailureThreshold: cfg.TelegramCircuitFailureCount,
			OpenTimeout:      cfg.TelegramCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.TelegramCircuitHalfOpenMaxRq,
		})
	} else {
		logger.Info("telegram disabled, broadcast will report unavailable")
	}
	broadcastSvc := usecase.NewBroadcastService(userRepo, notifier, cfg.BroadcastMaxWorkers, logger)

	handler := httpapi.NewHandler(userSvc, rankingSvc, seasonSvc, broadcastSvc, settingsSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		_ = store.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, store: store, logger: logger}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func migrateWithRetry(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	sourceURL := "file://" + filepath.ToSlash(dir)
	databaseURL := "sqlite://" + cfg.DBPath

	policy := resilience.NewRetryPolicy(cfg.MigrateAttempts, cfg.MigrateBackoff)
	return policy.Run(ctx, func(_ context.Context) error {
		m, err := migrate.New(sourceURL, databaseURL)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				logger.Warn("close migration source", "error", srcErr)
			}
			if dbErr != nil {
				logger.Warn("close migration db", "error", dbErr)
			}
		}()

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}

		return nil
	})
}
