package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sensorwatch/console/internal/api"
	"github.com/sensorwatch/console/internal/core/ports"
	"github.com/sensorwatch/console/internal/core/service"
	"github.com/sensorwatch/console/internal/infrastructure/config"
	redisdb "github.com/sensorwatch/console/internal/infrastructure/db/redis"
	"github.com/sensorwatch/console/internal/infrastructure/http/authclient"
	"github.com/sensorwatch/console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "console"})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "console"})
	mode, err := service.ParseMode(cfg.RenderMode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid render mode")
	}

	var (
		rdb     *goredis.Client
		cookies ports.CookieStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		cookies = redisdb.NewCookieStore(rdb, cfg.Redis.CookieTTL)
	}

	transport, err := authclient.New(ctx, authclient.Config{
		BaseURL: cfg.API.Base,
		Timeout: cfg.API.Timeout,
		Cookies: cookies,
	}, logger.Component("authclient"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build auth client")
	}

	store := service.NewSessionStore()
	sessions := service.NewSessionService(transport, store, log)
	gate := service.StartBootstrap(ctx, sessions, mode, log)

	e := api.NewRouter(api.Dependencies{
		Sessions: sessions,
		Session:  store,
		Gate:     gate,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("api_base", cfg.API.Base).
			Str("mode", string(mode)).
			Msg("console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("console listen")
		}
	}()

	sig := waitForShutdown()
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func waitForShutdown() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return <-sigCh
}
