package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"daily-quiz-bot/internal/app"
	httpapi "daily-quiz-bot/internal/http"
	"daily-quiz-bot/internal/infra/config"
	httpinfra "daily-quiz-bot/internal/infra/http"
	logx "daily-quiz-bot/internal/infra/log"
	"daily-quiz-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := logx.NewLogger(cfg.AppEnv, cfg.LogFormat)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("api: не удалось запустить сервис")
	}
	defer a.Close()

	if cfg.Admin.APIKey == "" && !cfg.Admin.DevBypass {
		log.Warn().Msg("api: ADMIN_API_KEY не задан, админские маршруты закрыты")
	}

	handlers := httpapi.NewServer(httpapi.Config{
		BaseURL:        cfg.BaseURL(),
		AdminAPIKey:    cfg.Admin.APIKey,
		AdminDevBypass: cfg.Admin.DevBypass,
	}, httpapi.Deps{
		Questions: a.Questions,
		Delivery:  a.Delivery,
		Today:     a.Repo,
		Answers:   a.Answers,
		Donations: a.Donations,
		Stats:     a.Stats,
	}, logx.Component(logger, "http"))

	srv := httpinfra.NewServer(logx.Component(logger, "http"), httpinfra.ServerConfig{
		Addr:            fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handlers.Router())

	if cfg.Schedule.Enabled {
		go a.Scheduler.Start(ctx)
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("api: старт")
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()
	<-ctx.Done()
	log.Info().Msg("api: остановка")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("api: ошибка остановки")
	}
}
