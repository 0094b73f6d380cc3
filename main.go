package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"socialapi/config"
	"socialapi/database"
	"socialapi/handlers"
	"socialapi/middleware"
	"socialapi/push"
	"socialapi/routes"
	"socialapi/storage"
	"socialapi/token"
	"socialapi/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// connect retries a few times so the API can start alongside the database.
func connect(ctx context.Context, cfg config.Mongo, log *logrus.Logger) (*database.Store, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		store, err := database.Connect(ctx, cfg)
		if err == nil {
			return store, nil
		}
		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("MongoDB connection failed")
		time.Sleep(2 * time.Second)
	}
	return nil, lastErr
}

func main() {
	cfg := config.Load()
	log := newLogger(cfg)
	if cfg.EnvFileErr != nil {
		log.WithError(cfg.EnvFileErr).Warn(".env file not loaded, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.WithField("database", cfg.Mongo.Database).Info("MongoDB connected")

	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.JWTExpiresIn)
	subs := database.NewSubscriptionRepository(store)

	feed := websocket.NewManager(log)
	go feed.Run(ctx)

	deps := handlers.Deps{
		Users:          database.NewUserRepository(store),
		Profiles:       database.NewProfileRepository(store),
		Posts:          database.NewPostRepository(store),
		Media:          database.NewMediaRepository(store),
		Accounts:       database.NewAccountRepository(store),
		Subscriptions:  subs,
		Tokens:         tokens,
		Feed:           feed,
		Health:         store,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadSize:  cfg.MaxUploadSize,
	}

	uploader, err := storage.New(ctx, cfg)
	switch {
	case err == nil:
		deps.Storage = uploader
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("media storage not configured, /api/media is disabled")
	default:
		log.WithError(err).Fatal("failed to initialise media storage")
	}

	if cfg.PushEnabled() {
		deps.Notifier = push.NewNotifier(subs, cfg.VAPID, log)
	} else {
		log.Warn("VAPID keys not set, push notifications are disabled")
	}

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	go func() {
		ticker := time.NewTicker(cfg.AuthRateWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune()
			}
		}
	}()

	router := routes.Setup(routes.Options{
		Handler:     handlers.New(deps),
		Tokens:      tokens,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		AuthLimiter: limiter,
		WebSocket:   feed.ServeWS(tokens),
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}

	log.Info("server stopped")
}
