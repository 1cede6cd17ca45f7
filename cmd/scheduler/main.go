package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/infra/config"
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
		log.Fatal().Err(err).Msg("scheduler: не удалось запустить")
	}
	defer a.Close()

	metrics.StartServer(ctx, logx.Component(logger, "metrics"), cfg.MetricsAddr)

	a.Scheduler.Start(ctx)
}
