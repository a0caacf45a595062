// Package server boots the DeviceExpress HTTP service: config, store,
// cache, queue workers, scheduler, and a graceful shutdown path.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/deviceexpress/app/jobs"
	"github.com/shashiranjanraj/deviceexpress/app/repositories"
	"github.com/shashiranjanraj/deviceexpress/app/routes"
	"github.com/shashiranjanraj/deviceexpress/config"
	"github.com/shashiranjanraj/deviceexpress/pkg/cache"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/logger"
	"github.com/shashiranjanraj/deviceexpress/pkg/metrics"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
	"github.com/shashiranjanraj/deviceexpress/pkg/payments"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
	"github.com/shashiranjanraj/deviceexpress/pkg/reqid"
	"github.com/shashiranjanraj/deviceexpress/pkg/router"
	"github.com/shashiranjanraj/deviceexpress/pkg/schedule"
	"github.com/shashiranjanraj/deviceexpress/pkg/storage"
)

// Start boots every subsystem and serves until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer store.Disconnect(context.Background()) //nolint:errcheck

	if err := store.EnsureIndexes(ctx); err != nil {
		// Existing duplicate data can block index creation; the server can
		// still run, registration just loses its race protection.
		logger.Warn("index creation failed", "error", err)
	}

	// Mirror log records into the logs collection alongside stdout.
	mongoLog := logger.NewMongoHandler(store.Logs, slog.LevelInfo)
	logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mongoLog))
	defer mongoLog.Close()

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", "error", err)
	}

	storage.Connect()

	// Queue: redis driver when the cache connection is up, in-memory
	// otherwise. Failed jobs land in mongo either way.
	jobs.RegisterAll()
	queue.UseCollection(store.FailedJobs)
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.StartWorkers(ctx, config.QueueWorkers())

	startMaintenance(ctx, store)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)
	routes.RegisterAPI(r, store, payments.NewStripe())

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("deviceexpress listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startMaintenance registers the recurring housekeeping tasks and starts the
// scheduler loop.
func startMaintenance(ctx context.Context, store *database.Store) {
	bookings := repositories.NewBookingRepository(store)

	// Keep the unpaid-bookings gauge fresh.
	schedule.Every(5).Minutes().WithoutOverlapping().Run(func() {
		opCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := bookings.CountUnpaid(opCtx); err == nil {
			metrics.UnpaidBookings.Set(float64(n))
		} else {
			logger.Warn("unpaid bookings count failed", "error", err)
		}
	})

	// Old log documents have no read path after a month.
	schedule.Daily().WithoutOverlapping().Run(func() {
		opCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.PruneLogs(opCtx, 30*24*time.Hour); err != nil {
			logger.Warn("log prune failed", "error", err)
		}
	})

	go schedule.Start(ctx)
}
