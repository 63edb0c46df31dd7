// cmd/server/main.go
// Entry point for the league matchups API server. cmd/ holds the executables and
// internal/ the packages they are built from.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	// cors lets the web and mobile clients call the API from other origins
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-matchups/internal/cache"
	"github.com/trentd187/golf-league-matchups/internal/config"
	"github.com/trentd187/golf-league-matchups/internal/database"
	"github.com/trentd187/golf-league-matchups/internal/handlers"
	"github.com/trentd187/golf-league-matchups/internal/jobs"
	"github.com/trentd187/golf-league-matchups/internal/logging"
	"github.com/trentd187/golf-league-matchups/internal/middleware"
	"github.com/trentd187/golf-league-matchups/internal/store"
	"github.com/trentd187/golf-league-matchups/internal/websocket"
)

func main() {
	// Load configuration from the environment (and optionally .env / .golfleague.yaml).
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// Stop on Ctrl-C or the orchestrator's SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, log, cfg.IsDevelopment())
	if err != nil {
		return err
	}

	// Bring the schema up to date before serving, so every instance agrees on it.
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return err
	}

	s := store.New(db)
	holes := cache.NewCourseHoles(cfg.CourseCacheSize, cfg.CourseCacheTTL, s)

	// The Hub holds this instance's live result sockets.
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// With Redis configured, results go through it so watchers connected to any
	// instance see them. Without it the Hub is used directly.
	var live websocket.Broadcaster = hub
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unreachable, live results stay on this instance until it recovers")
		}

		relay := websocket.NewRelay(rdb, hub, log, clockwork.NewRealClock())
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.WithError(err).Error("Live relay stopped")
			}
		}()
		live = relay
	}

	// The reconciler reads holes straight from the store rather than the cache, so a
	// corrected course is rescored on its next pass.
	if cfg.ReconcileEnabled() {
		reconciler := jobs.NewReconciler(s, live, log)
		if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
			return err
		}
		defer reconciler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName: "Golf League Matchups API",
		// Errors that escape a handler get the same {"error": ...} body as the rest.
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Global middleware ---
	// app.Use registers middleware that runs on every request, in the order added.
	// recover turns a handler panic into a 500 instead of killing the process.
	app.Use(recover.New())
	// One structured log line per request, tagged with a request id.
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New())

	handlers.Register(app, &handlers.Deps{
		Store: s,
		Holes: holes,
		Live:  live,
		Hub:   hub,
		Clock: clockwork.NewRealClock(),
		Log:   log,
	}, middleware.Auth(middleware.AuthConfig{
		Secret: []byte(cfg.JWTSecret),
		DB:     db,
		Clock:  clockwork.NewRealClock(),
		Log:    log,
	}))

	// app.Listen blocks until the server stops, so it runs in its own goroutine and
	// main waits for either a listen error or a shutdown signal.
	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("Starting server")
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// Give in-flight requests up to 10 seconds to finish before closing connections.
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
