package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/usecase/delivery"
)

const (
	tickInterval = time.Minute
	guardTTL     = 48 * time.Hour
	guardPrefix  = "quiz:daily:"
)

// Runner выполняет ежедневную рассылку.
type Runner interface {
	Run(ctx context.Context) (delivery.Report, bool, error)
}

// Config задаёт локальное время рассылки.
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Scheduler раз в минуту проверяет время и запускает рассылку не чаще раза в сутки.
type Scheduler struct {
	runner Runner
	guard  domain.Cache
	cfg    Config
	log    zerolog.Logger
}

// NewScheduler создаёт планировщик.
func NewScheduler(runner Runner, guard domain.Cache, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{runner: runner, guard: guard, cfg: cfg, log: log}
}

// Due сообщает, наступило ли время рассылки: нужный час и минута не раньше заданной.
func (s *Scheduler) Due(now time.Time) bool {
	local := now.In(s.cfg.Location)
	return local.Hour() == s.cfg.Hour && local.Minute() >= s.cfg.Minute
}

// DayKey возвращает ключ блокировки для календарного дня в часовом поясе расписания.
func (s *Scheduler) DayKey(now time.Time) string {
	return guardPrefix + now.In(s.cfg.Location).Format("2006-01-02")
}

// Tick запускает рассылку, если пора и сегодня она ещё не выполнялась.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (bool, error) {
	if !s.Due(now) {
		return false, nil
	}
	return s.RunToday(ctx, now)
}

// RunToday запускает рассылку за день now, если она ещё не выполнялась, без проверки часа.
func (s *Scheduler) RunToday(ctx context.Context, now time.Time) (bool, error) {
	key := s.DayKey(now)
	ran, err := s.guard.Once(ctx, key, guardTTL, func() error {
		report, ok, err := s.runner.Run(ctx)
		if err != nil {
			return err
		}
		if ok {
			s.log.Info().Int64("daily_question_id", report.DeliveryEventID).Int("sent", report.Sent).Int("failed", report.Failed).Msg("scheduler: вопрос дня разослан")
		}
		return nil
	})
	if err != nil {
		return ran, fmt.Errorf("ежедневная рассылка %s: %w", key, err)
	}
	return ran, nil
}

// Start крутит цикл до отмены контекста. Ошибки логируются, цикл продолжается.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Int("hour", s.cfg.Hour).Int("minute", s.cfg.Minute).Str("tz", s.cfg.Location.String()).Msg("scheduler: старт")
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler: остановка")
			return
		case now := <-ticker.C:
			if _, err := s.Tick(ctx, now); err != nil {
				s.log.Error().Err(err).Msg("scheduler: ошибка рассылки")
			}
		}
	}
}
