// @title           EMS API
// @version         1.0
// @description     Employee management: attendance, payroll, leave, tasks, training, offboarding and notifications.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/b2world/ems-backend/internal/api"
	"github.com/b2world/ems-backend/internal/app"
	"github.com/b2world/ems-backend/internal/infrastructure/scheduler"
	"github.com/b2world/ems-backend/internal/pkg/config"
	"github.com/b2world/ems-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ems-api",
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}

	a.Queue.Start(ctx)

	sched := scheduler.New(a.Payroll, a.Location, log)
	if cfg.Payroll.Schedule != "" {
		if err := sched.SchedulePayroll(cfg.Payroll.Schedule); err != nil {
			log.Fatal().Err(err).Msg("invalid payroll schedule")
		}
		sched.Start()
	}

	e := api.NewRouter(a.Services, api.Options{
		Tokens:   a.Tokens,
		Location: a.Location,
		Probes:   a.Probes(),
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	sched.Stop(shutdownCtx)
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("close connections")
	}
	log.Info().Msg("bye")
}
