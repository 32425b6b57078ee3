// Command devauth runs a development stand-in for the monitoring API's auth
// endpoints, so the console can be exercised without the real backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sensorwatch/console/internal/infrastructure/config"
	"github.com/sensorwatch/console/internal/infrastructure/devauth"
	"github.com/sensorwatch/console/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "devauth"})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "devauth"})

	if cfg.IsProduction() {
		log.Fatal().Msg("devauth must not run in production")
	}

	svc := devauth.NewService(cfg.DevAuth.JWTSecret, cfg.DevAuth.TokenTTL)
	if err := svc.SeedAdmin(ctx, cfg.DevAuth.AdminEmail, cfg.DevAuth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}

	e := devauth.NewServer(svc, log)
	go func() {
		log.Info().Str("port", cfg.DevAuth.Port).Msg("devauth listening")
		if err := e.Start(":" + cfg.DevAuth.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("devauth listen")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = e.Shutdown(shutdownCtx)
}
