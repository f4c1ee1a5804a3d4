// Command console serves the rental console API.
//
// @title          Rental Console API
// @version        1.0
// @description    Console sessions for the rental operations console: cached views, optimistic ticket mutations, URL selection and the activity feed.
// @BasePath       /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/rental-console/internal/config"
	httpapi "github.com/tbourn/rental-console/internal/http"
	"github.com/tbourn/rental-console/internal/observability"
	"github.com/tbourn/rental-console/internal/recordstore"
	"github.com/tbourn/rental-console/internal/repo"
	"github.com/tbourn/rental-console/internal/services"
	"github.com/tbourn/rental-console/internal/sysutil"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	logger := sysutil.SetupLogger(os.Stderr, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	stores := services.SQLStores(db)
	if strings.EqualFold(cfg.SessionStore, "redis") {
		rdb, err := repo.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
		}
		defer rdb.Close()
		stores = services.RedisStores(rdb, cfg.SessionTTL, db)
	}

	records := recordstore.New(cfg.RecordStore.BaseURL, cfg.RecordStore.Timeout)
	manager := services.NewManager(records, stores, services.Options{
		Sync:           cfg.Sync,
		DB:             db,
		IdempotencyTTL: cfg.IdempotencyTTL,
		IdleTTL:        cfg.SessionTTL,
		Logger:         logger,
	})
	go manager.RunJanitor(ctx, time.Minute)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, manager, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("record_store", cfg.RecordStore.BaseURL).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	manager.Shutdown(sctx)
	if err := shutdownOTel(sctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
}
