package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/simplekeytime/licensing-system/docs"
	"github.com/simplekeytime/licensing-system/internal/api"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
	"github.com/simplekeytime/licensing-system/internal/core/service"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/config"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/db/mongo"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/db/postgres"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/db/redis"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/email"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/queue"
	"github.com/simplekeytime/licensing-system/pkg/logger"
)

// @title           SimpleKeytime Licensing API
// @version         1.0
// @description     License-key lifecycle service: batch generation, single-use activation, expiry, and project-scoped user accounts.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "licensing-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Postgres (authoritative store) ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// --- MongoDB (audit archive) ---
	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	// --- Redis (audit dedup) ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Audit pipeline ---
	auditRepo := mongo.NewAuditRepository(mongoDB)
	dedup := redis.NewDedupChecker(rdb)
	auditService := service.NewAuditService(auditRepo, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, log)
	dispatcher.Start(ctx)

	// --- Outbound mail ---
	var mailer ports.Mailer
	if cfg.SMTP.Enabled() {
		mailer = email.NewMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, log)
	} else {
		log.Warn().Msg("smtp not configured, outbound mail disabled")
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.TokenTTL) * time.Hour,
		Pool:      pool,
		Mongo:     mongoDB,
		Redis:     rdb,
		AuditSink: dispatcher,
		Mailer:    mailer,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting licensing api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
