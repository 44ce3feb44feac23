package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinecito/internal/catalog"
	"github.com/iliyamo/cinecito/internal/config" // Internal config loader
	"github.com/iliyamo/cinecito/internal/database"
	"github.com/iliyamo/cinecito/internal/handler"
	"github.com/iliyamo/cinecito/internal/lock"
	"github.com/iliyamo/cinecito/internal/middleware"
	"github.com/iliyamo/cinecito/internal/pkg/logger"
	"github.com/iliyamo/cinecito/internal/pkg/metrics"
	"github.com/iliyamo/cinecito/internal/queue"
	"github.com/iliyamo/cinecito/internal/repository"
	"github.com/iliyamo/cinecito/internal/router" // Internal router setup
	"github.com/iliyamo/cinecito/internal/scheduler"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		showtimes scheduler.Store
		movies    catalog.Store
		pinger    handler.Pinger
	)
	switch cfg.StoreDriver {
	case "memory":
		showtimes = repository.NewMemoryShowtimeRepo()
		movies = repository.NewMemoryMovieRepo()
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		db, err := database.Open(cfg.DB)
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		if cfg.Migrate {
			if err := database.Migrate(db.DB); err != nil {
				logger.Fatal("migrations failed", zap.Error(err))
			}
		}
		showtimes = repository.NewShowtimeRepo(db)
		movies = repository.NewMovieRepo(db)
		pinger = db
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unreachable; cache and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	deps := scheduler.Deps{
		Store:   showtimes,
		Locker:  slotLocker(cfg, rdb),
		Metrics: m,
	}
	deps.SameSlot, _ = scheduler.ParseSameSlotPolicy(cfg.SameSlot) // validated by config.Load
	if cfg.RabbitURL != "" {
		deps.Publisher = queue.NewPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartShowtimeConsumer(ctx, cfg.RabbitURL, cfg.EventLogDir); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("showtime consumer stopped", zap.Error(err))
			}
		}()
	}
	sched := scheduler.New(deps)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	middleware.Setup(e, m)

	router.Register(e, router.Handlers{
		Health:    handler.NewHealthHandler(pinger),
		Auth:      handler.NewAuthHandler(cfg),
		Showtimes: handler.NewShowtimeHandler(sched),
		Movies:    handler.NewMovieHandler(catalog.New(movies)),
	}, router.Options{
		Config:    cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening",
			zap.String("addr", addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver),
			zap.String("slot_lock", cfg.SlotLock),
			zap.Bool("auth", cfg.AuthEnabled()),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// slotLocker picks the per-slot lock.  A redis lock without a reachable
// server falls back to the in-process lock.
func slotLocker(cfg config.Config, rdb *redis.Client) scheduler.Locker {
	switch cfg.SlotLock {
	case "none":
		logger.Warn("slot lock disabled; the unique index is the only guard")
		return nil
	case "redis":
		if rdb != nil {
			return lock.NewRedisLocker(rdb, cfg.SlotLockTTL)
		}
		logger.Warn("redis slot lock requested but redis is unreachable; using local lock")
	}
	return lock.NewKeyedMutex()
}
