// @title          User Service API
// @version        1.0
// @description    User registration, password-grant tokens and admin user management.
// @BasePath       /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/fortask/user-service/internal/api"
	"github.com/fortask/user-service/internal/api/handler"
	"github.com/fortask/user-service/internal/core/ports"
	"github.com/fortask/user-service/internal/core/service"
	"github.com/fortask/user-service/internal/infrastructure/config"
	"github.com/fortask/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/fortask/user-service/internal/infrastructure/db/redis"
	"github.com/fortask/user-service/internal/infrastructure/queue"
	"github.com/fortask/user-service/internal/infrastructure/security"
	"github.com/fortask/user-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Level: "info"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-service",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	readiness := map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return pingMongo(ctx, db) },
	}

	// --- Audit trail ---
	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure audit indexes")
	}
	auditService := service.NewAuditService(auditRepo, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Users.AuditWorkers, auditService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	opts := []service.Option{
		service.WithTokenTTL(cfg.Auth.TokenTTL()),
		service.WithListLimit(cfg.Users.ListLimit),
		service.WithAuditSink(dispatcher),
	}

	// --- Optional idempotency store ---
	var rdb *redis.Client
	redisCfg := redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}
	if redisCfg.Enabled() {
		rdb, err = redisdb.Connect(ctx, redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		opts = append(opts, service.WithIdempotency(redisdb.NewIdempotencyStore(rdb)))
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Info().Msg("redis not configured, idempotent create disabled")
	}

	users := service.NewUserService(
		mongo.NewUserRepository(db),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewTokenManager(cfg.Auth.JWTSecret),
		logger.Component("users"),
		opts...,
	)

	if err := users.EnsureAdmin(ctx, ports.CreateUserInput{
		ID:        cfg.Admin.ID,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}

	router := api.NewRouter(api.Deps{
		Users:     users,
		Logger:    logger.Component("http"),
		Readiness: readiness,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Requests are drained, so nothing publishes any more.
	dispatcher.Close()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}
	if err := mongo.Disconnect(shutdownCtx, mongoClient); err != nil {
		log.Error().Err(err).Msg("disconnect mongo")
	}

	log.Info().Msg("shutdown complete")
}

func pingMongo(ctx context.Context, db *mongodriver.Database) error {
	if err := db.Client().Ping(ctx, nil); err != nil {
		return err
	}
	return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
