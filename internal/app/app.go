package app

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/adapters/kakao"
	"daily-quiz-bot/internal/adapters/repo"
	"daily-quiz-bot/internal/adapters/telegram"
	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/cache"
	"daily-quiz-bot/internal/infra/config"
	"daily-quiz-bot/internal/infra/db"
	logx "daily-quiz-bot/internal/infra/log"
	"daily-quiz-bot/internal/usecase/answers"
	"daily-quiz-bot/internal/usecase/delivery"
	"daily-quiz-bot/internal/usecase/donation"
	"daily-quiz-bot/internal/usecase/messages"
	"daily-quiz-bot/internal/usecase/questions"
	"daily-quiz-bot/internal/usecase/schedule"
	"daily-quiz-bot/internal/usecase/stats"
)

// App собирает адаптеры и сервисы общие для всех бинарников.
type App struct {
	Cfg   config.AppConfig
	Log   zerolog.Logger
	Pool  *pgxpool.Pool
	Repo  *repo.Postgres
	Guard domain.Cache
	Kakao *kakao.Client

	Messenger domain.Messenger
	Bot       *tgbotapi.BotAPI // только для драйвера telegram

	Questions *questions.Service
	Delivery  *delivery.Service
	Answers   *answers.Service
	Donations *donation.Service
	Stats     *stats.Service
	Scheduler *schedule.Scheduler
	Templates messages.Templates

	redis *redis.Client
}

// New подключается к БД, применяет схему и связывает сервисы.
func New(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*App, error) {
	if strings.TrimSpace(cfg.PGDSN) == "" {
		return nil, fmt.Errorf("PG_DSN не задан")
	}
	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{Cfg: cfg, Log: logger, Pool: pool, Repo: repo.NewPostgres(pool)}

	a.Kakao = kakao.NewClient(kakao.Config{
		BaseURL:  cfg.Kakao.BaseURL,
		AdminKey: cfg.Kakao.AdminKey,
		PayCID:   cfg.Kakao.PayCID,
		Timeout:  cfg.Kakao.Timeout,
	})
	messenger, err := a.messenger()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Messenger = messenger
	if err := a.connectGuard(ctx); err != nil {
		a.Close()
		return nil, err
	}

	tpl := messages.New(cfg.BaseURL())
	a.Templates = tpl
	a.Questions = questions.NewService(a.Repo, a.Repo)
	a.Delivery = delivery.NewService(a.Repo, a.Repo, a.Repo, messenger, tpl, logx.Component(logger, "delivery"))
	a.Answers = answers.NewService(a.Repo, a.Repo, a.Repo, messenger, tpl, logx.Component(logger, "answers"))
	a.Donations = donation.NewService(donation.Config{
		BaseURL:       cfg.BaseURL(),
		DefaultAmount: cfg.Donation.DefaultAmount,
		MinAmount:     cfg.Donation.MinAmount,
		ItemName:      cfg.Donation.ItemName,
	}, a.Repo, a.Repo, a.Kakao, messenger, tpl, logx.Component(logger, "donation"))
	a.Stats = stats.NewService(a.Repo, a.Repo, a.Repo)
	a.Scheduler = schedule.NewScheduler(a.Delivery, a.Guard, schedule.Config{
		Hour:     cfg.Schedule.Hour,
		Minute:   cfg.Schedule.Minute,
		Location: cfg.Location(),
	}, logx.Component(logger, "scheduler"))
	return a, nil
}

func (a *App) messenger() (domain.Messenger, error) {
	switch a.Cfg.Messenger.Driver {
	case config.MessengerKakao:
		return a.Kakao, nil
	case config.MessengerTelegram:
		bot, err := tgbotapi.NewBotAPI(a.Cfg.Telegram.Token)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		a.Bot = bot
		return telegram.NewSender(bot, logx.Component(a.Log, "telegram")), nil
	default:
		return nil, fmt.Errorf("неизвестный MESSENGER_DRIVER %q", a.Cfg.Messenger.Driver)
	}
}

// connectGuard выбирает Redis, если задан REDIS_ADDR, иначе блокировки живут в памяти.
func (a *App) connectGuard(ctx context.Context) error {
	if strings.TrimSpace(a.Cfg.RedisAddr) == "" {
		a.Log.Warn().Msg("REDIS_ADDR не задан, защита от повторной рассылки работает в памяти процесса")
		a.Guard = cache.NewMemory()
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis: %w", err)
	}
	a.redis = client
	a.Guard = cache.NewRedis(client)
	return nil
}

// Close освобождает соединения.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
