package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devevent/booking"
	"devevent/config"
	"devevent/db"
	"devevent/events"
	"devevent/logger"
	"devevent/middleware"
	"devevent/mq"
	"devevent/ratelim"
	"devevent/rdx"
	"devevent/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	writesPerMinute = 30
	writeBurst      = 5
	visitorTTL      = 10 * time.Minute
)

func setupRouter(mgr *db.Manager, rc *redis.Client, rl *ratelim.RateLimiter, log zerolog.Logger) *httprouter.Router {
	emitter := mq.NewEmitter(rc, log)

	eventStore := events.NewStore(
		events.NewMongoRepository(mgr),
		events.WithNotifier(emitter),
		events.WithLogger(log),
	)
	bookingStore := booking.NewStore(
		booking.NewMongoRepository(mgr),
		eventStore,
		booking.WithNotifier(emitter),
		booking.WithLogger(log),
	)

	router := httprouter.New()

	var pinger routes.Pinger
	if rc != nil {
		pinger = rdx.Health{Client: rc}
	}
	routes.AddHealthRoutes(router, mgr, pinger)
	routes.AddEventsRoutes(router, events.NewHandler(eventStore, log), rl)
	routes.AddBookingRoutes(router, booking.NewHandler(bookingStore, eventStore, log), rl)

	return router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config is not known yet
		boot := logger.New(config.DefaultLogLevel, false)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.Production())

	mgr, err := db.NewManager(cfg.MongoURI, cfg.MongoDatabase, db.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("database manager")
	}

	rc, err := rdx.Open(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; notifications disabled")
		rc = nil
	}

	rateLimiter := ratelim.NewRateLimiter(writesPerMinute, writeBurst, visitorTTL)
	done := make(chan struct{})
	go rateLimiter.Run(time.Minute, done)

	router := setupRouter(mgr, rc, rateLimiter, log)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
	}).Handler(router)

	handler := middleware.Logging(log, middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(done)
	})

	go func() {
		log.Info().Str("addr", cfg.Port).Str("database", cfg.MongoDatabase).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := mgr.Close(ctx); err != nil {
		log.Error().Err(err).Msg("closing database")
	}
	if rc != nil {
		_ = rc.Close()
	}

	log.Info().Msg("server stopped cleanly")
}
