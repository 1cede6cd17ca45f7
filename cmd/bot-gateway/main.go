package main

import (
	"context"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"daily-quiz-bot/internal/adapters/bot"
	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/infra/config"
	logx "daily-quiz-bot/internal/infra/log"
	"daily-quiz-bot/internal/infra/metrics"
)

const pollTimeoutSeconds = 30

func main() {
	cfg := config.Load()
	logger := logx.NewLogger(cfg.AppEnv, cfg.LogFormat)
	if cfg.Messenger.Driver != config.MessengerTelegram {
		log.Fatal().Str("driver", cfg.Messenger.Driver).Msg("bot-gateway: нужен MESSENGER_DRIVER=telegram")
	}
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("bot-gateway: не удалось запустить")
	}
	defer a.Close()

	metrics.StartServer(ctx, logx.Component(logger, "metrics"), cfg.MetricsAddr)
	if cfg.Schedule.Enabled {
		go a.Scheduler.Start(ctx)
	}

	// long polling несовместим с установленным вебхуком
	if _, err := a.Bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("bot-gateway: не удалось снять вебхук")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := a.Bot.GetUpdatesChan(u)

	h := bot.NewHandler(a.Answers, a.Repo, a.Messenger, a.Templates, logx.Component(logger, "bot"))
	log.Info().Str("bot", a.Bot.Self.UserName).Msg("bot-gateway: старт")
	h.Run(ctx, updates)
	a.Bot.StopReceivingUpdates()
	log.Info().Msg("bot-gateway: остановка")
}
