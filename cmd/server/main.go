package main

import (
	"context"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/cache"
	"github.com/sevenpm/date-backend/internal/config"
	"github.com/sevenpm/date-backend/internal/db"
	"github.com/sevenpm/date-backend/internal/logger"
	"github.com/sevenpm/date-backend/internal/notify"
	"github.com/sevenpm/date-backend/internal/relay"
	"github.com/sevenpm/date-backend/internal/server"
	"github.com/sevenpm/date-backend/internal/service/auth"
	"github.com/sevenpm/date-backend/internal/service/chat"
	"github.com/sevenpm/date-backend/internal/service/matchmaking"
	"github.com/sevenpm/date-backend/internal/service/profile"
	"github.com/sevenpm/date-backend/internal/service/rsvp"
	"github.com/sevenpm/date-backend/internal/service/verdict"
	"github.com/sevenpm/date-backend/internal/storage"
)

func main() {
	cfg := config.New()
	ctx := context.Background()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)

	// Optional integrations: APNs pushes and S3 photo uploads.
	notifier, err := notify.New(cfg, log)
	if err != nil {
		log.Error("failed to init apns", "err", err)
		return
	}
	photoStore, err := storage.NewPhotoStore(ctx, cfg)
	if err != nil {
		log.Error("failed to init photo store", "err", err)
		return
	}

	hub := relay.NewHub(log)

	authReg := auth.NewRegistrar(appCtx)
	validator := authReg.Service()

	profileReg := profile.NewRegistrar(appCtx, photoStore, validator)
	matchSvc := matchmaking.NewMatchService(appCtx, profileReg.Service(), hub, notifier)
	chatSvc := chat.NewChatService(appCtx, hub, notifier)
	verdictSvc := verdict.NewVerdictService(appCtx, hub)

	// Finish any purge a crash interrupted before serving traffic.
	if err := verdictSvc.ResumePendingCleanups(ctx); err != nil {
		log.Error("failed to resume pending cleanups", "err", err)
	}

	registrars := []server.Registrar{
		authReg,
		profileReg,
		rsvp.NewRegistrar(appCtx, validator),
		matchmaking.NewRegistrar(matchSvc, validator),
		chat.NewRegistrar(chatSvc, validator),
		verdict.NewRegistrar(verdictSvc, validator),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("server stopped", "err", err)
	}
}
